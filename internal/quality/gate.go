// Package quality implements the rule-based listing gate: a pure scorer
// that flags scam, low-quality and incomplete job offers independent of any
// user or campaign. Run it before candidates reach the processor, or as a
// standalone feed filter.
package quality

import (
	"fmt"
	"strings"
	"unicode"

	"jobpilot/campaign-service/internal/model"
)

// Score thresholds. A listing below passThreshold never reaches a user.
const (
	verifiedThreshold = 70
	passThreshold     = 50
)

// scamIndicators cost 20 points each. Exact lowercase substrings.
var scamIndicators = []string{
	"wire transfer",
	"pay to apply",
	"registration fee",
	"processing fee",
	"western union",
	"send money",
	"upfront payment",
	"training fee",
	"starter kit purchase",
	"crypto wallet",
}

// suspiciousPatterns cost 10 points each. Exact lowercase substrings.
var suspiciousPatterns = []string{
	"@gmail.com",
	"@yahoo.com",
	"@hotmail.com",
	"no interview needed",
	"no experience needed",
	"make $",
	"per week guaranteed",
	"quick money",
	"unlimited earning",
	"be your own boss",
}

// companyPlaceholders are values that count as a missing company name.
var companyPlaceholders = map[string]bool{
	"":             true,
	"confidential": true,
	"unknown":      true,
	"n/a":          true,
	"company":      true,
}

// locationPlaceholders are values that count as a missing location.
var locationPlaceholders = map[string]bool{
	"":        true,
	"unknown": true,
	"n/a":     true,
	"tbd":     true,
}

// Issue is one triggered check, ranked for UI display by Severity (1–9).
type Issue struct {
	Flag     string
	Message  string
	Severity int
}

// Assessment is the ephemeral result of assessing one listing. It is never
// persisted.
type Assessment struct {
	Score      int
	IsVerified bool // score >= 70
	Passed     bool // score >= 50
	Issues     []Issue
}

// Assess scores a listing starting from 100 and deducting per triggered
// check, clamped to [0,100]. Pure function: no state, no I/O.
func Assess(job model.Job) Assessment {
	score := 100
	var issues []Issue

	deduct := func(points int, flag, message string, severity int) {
		score -= points
		issues = append(issues, Issue{Flag: flag, Message: message, Severity: severity})
	}

	haystack := strings.ToLower(job.Title + " " + job.Description + " " + job.Company)

	// ── Scam indicators (−20 each) ─────────────────────────────────────
	for _, indicator := range scamIndicators {
		if strings.Contains(haystack, indicator) {
			deduct(20, "scam_indicator",
				fmt.Sprintf("listing contains scam indicator %q", indicator), 9)
		}
	}

	// ── Suspicious patterns (−10 each) ─────────────────────────────────
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(haystack, pattern) {
			deduct(10, "suspicious_pattern",
				fmt.Sprintf("listing contains suspicious pattern %q", pattern), 6)
		}
	}

	// ── Structural low-quality markers ─────────────────────────────────
	text := job.Title + " " + job.Description
	if strings.Contains(text, "!!!") || strings.Contains(text, "???") {
		deduct(5, "excessive_punctuation", "excessive !!! or ??? punctuation", 3)
	}
	if n := countShoutingWords(text); n > 5 {
		deduct(5, "excessive_caps", fmt.Sprintf("%d all-caps words", n), 3)
	}
	if len(job.Description) > 0 && len(job.Description) < 100 {
		deduct(10, "short_description", "description under 100 characters", 4)
	}
	if n := countEmoji(text); n > 5 {
		deduct(5, "excessive_emoji", fmt.Sprintf("%d emoji characters", n), 2)
	}

	// ── Missing or placeholder fields ──────────────────────────────────
	if companyPlaceholders[strings.ToLower(strings.TrimSpace(job.Company))] {
		deduct(15, "missing_company", "company name missing or placeholder", 5)
	}
	if len(strings.TrimSpace(job.Description)) < 30 {
		deduct(10, "missing_description", "description missing or too short", 4)
	}
	if strings.TrimSpace(job.ApplyURL) == "" {
		deduct(15, "missing_apply_url", "no application URL", 5)
	}
	if locationPlaceholders[strings.ToLower(strings.TrimSpace(job.Location))] {
		deduct(5, "missing_location", "location missing or placeholder", 2)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Assessment{
		Score:      score,
		IsVerified: score >= verifiedThreshold,
		Passed:     score >= passThreshold,
		Issues:     issues,
	}
}

// countShoutingWords counts words longer than 3 characters written entirely
// in capital letters.
func countShoutingWords(text string) int {
	n := 0
	for _, word := range strings.Fields(text) {
		word = strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) })
		if len([]rune(word)) <= 3 {
			continue
		}
		upper := true
		for _, r := range word {
			if !unicode.IsUpper(r) {
				upper = false
				break
			}
		}
		if upper {
			n++
		}
	}
	return n
}

// countEmoji counts runes in the common emoji blocks.
func countEmoji(text string) int {
	n := 0
	for _, r := range text {
		if (r >= 0x1F300 && r <= 0x1FAFF) || (r >= 0x2600 && r <= 0x27BF) {
			n++
		}
	}
	return n
}
