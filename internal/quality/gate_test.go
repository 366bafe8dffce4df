package quality_test

import (
	"strings"
	"testing"

	"jobpilot/campaign-service/internal/model"
	"jobpilot/campaign-service/internal/quality"
)

// cleanJob returns a listing that triggers no deduction at all.
func cleanJob() model.Job {
	return model.Job{
		ID:       "job-1",
		Title:    "Senior Backend Engineer",
		Company:  "Acme Logistics GmbH",
		Location: "Berlin, Germany",
		Description: "We are looking for an experienced backend engineer to join our " +
			"platform team. You will design and operate distributed services, own " +
			"features end to end and mentor junior colleagues.",
		ApplyURL: "https://jobs.acme.example/backend-engineer",
		Source:   "linkedin",
	}
}

func TestAssess_CleanListingScoresFull(t *testing.T) {
	got := quality.Assess(cleanJob())
	if got.Score != 100 {
		t.Fatalf("Score = %d, want 100 (issues: %+v)", got.Score, got.Issues)
	}
	if !got.IsVerified || !got.Passed {
		t.Errorf("IsVerified = %v, Passed = %v, want both true", got.IsVerified, got.Passed)
	}
	if len(got.Issues) != 0 {
		t.Errorf("Issues = %+v, want none", got.Issues)
	}
}

func TestAssess_EachScamIndicatorCosts20(t *testing.T) {
	indicators := []string{
		"wire transfer", "pay to apply", "registration fee", "processing fee",
		"western union", "send money", "upfront payment", "training fee",
		"starter kit purchase", "crypto wallet",
	}
	for _, indicator := range indicators {
		job := cleanJob()
		job.Description += " Payment via " + indicator + " is part of onboarding."
		got := quality.Assess(job)
		if got.Score != 80 {
			t.Errorf("%q: Score = %d, want 80", indicator, got.Score)
		}
	}
}

func TestAssess_EachSuspiciousPatternCosts10(t *testing.T) {
	patterns := []string{
		"no interview needed", "no experience needed", "per week guaranteed",
		"quick money", "unlimited earning", "be your own boss",
	}
	for _, pattern := range patterns {
		job := cleanJob()
		job.Description += " Contact us, " + pattern + "."
		got := quality.Assess(job)
		if got.Score != 90 {
			t.Errorf("%q: Score = %d, want 90", pattern, got.Score)
		}
	}
}

func TestAssess_FreeMailContactIsSuspicious(t *testing.T) {
	job := cleanJob()
	job.Description += " Apply at recruiter@gmail.com today."
	if got := quality.Assess(job); got.Score != 90 {
		t.Errorf("Score = %d, want 90", got.Score)
	}
}

func TestAssess_ScamAdFailsGate(t *testing.T) {
	job := model.Job{
		ID:          "job-scam",
		Title:       "Make $5000/week!!! No experience needed",
		Company:     "Confidential",
		Location:    "",
		Description: "Send money to start earning today",
	}
	got := quality.Assess(job)
	if got.Score > 40 {
		t.Fatalf("Score = %d, want <= 40", got.Score)
	}
	if got.Passed || got.IsVerified {
		t.Errorf("Passed = %v, IsVerified = %v, want both false", got.Passed, got.IsVerified)
	}
	var sawScam bool
	for _, issue := range got.Issues {
		if issue.Flag == "scam_indicator" {
			sawScam = true
		}
	}
	if !sawScam {
		t.Error("expected a scam_indicator issue")
	}
}

func TestAssess_Thresholds(t *testing.T) {
	// One scam indicator and one suspicious pattern: 100-20-10 = 70,
	// exactly on the verified boundary.
	job := cleanJob()
	job.Description += " This role requires a wire transfer. No interview needed."
	got := quality.Assess(job)
	if got.Score != 70 {
		t.Fatalf("Score = %d, want 70", got.Score)
	}
	if !got.IsVerified || !got.Passed {
		t.Errorf("at 70: IsVerified = %v, Passed = %v, want both true", got.IsVerified, got.Passed)
	}

	// Two scam indicators and one suspicious pattern: 50, still passing
	// but no longer verified.
	job = cleanJob()
	job.Description += " A wire transfer and a registration fee apply. No interview needed."
	got = quality.Assess(job)
	if got.Score != 50 {
		t.Fatalf("Score = %d, want 50", got.Score)
	}
	if got.IsVerified {
		t.Error("at 50: IsVerified should be false")
	}
	if !got.Passed {
		t.Error("at 50: Passed should be true")
	}

	// One more suspicious pattern: 40, below the gate.
	job.Description += " Quick money."
	if got = quality.Assess(job); got.Passed {
		t.Errorf("at %d: Passed should be false", got.Score)
	}
}

func TestAssess_StructuralMarkers(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.Job)
		want   int
	}{
		{"excessive punctuation", func(j *model.Job) { j.Title += " APPLY NOW!!!" }, 95},
		{"short description", func(j *model.Job) {
			j.Description = "Short but plausible description of a role here."
		}, 90},
		{"missing company", func(j *model.Job) { j.Company = "N/A" }, 85},
		{"missing apply url", func(j *model.Job) { j.ApplyURL = "" }, 85},
		{"missing location", func(j *model.Job) { j.Location = "TBD" }, 95},
	}
	for _, tc := range cases {
		job := cleanJob()
		tc.mutate(&job)
		if got := quality.Assess(job); got.Score != tc.want {
			t.Errorf("%s: Score = %d, want %d", tc.name, got.Score, tc.want)
		}
	}
}

func TestAssess_ShoutingAndEmoji(t *testing.T) {
	job := cleanJob()
	job.Description += " URGENT HIRING GREAT SALARY AMAZING BENEFITS IMMEDIATE START"
	if got := quality.Assess(job); got.Score != 95 {
		t.Errorf("shouting: Score = %d, want 95", got.Score)
	}

	job = cleanJob()
	job.Description += " 🚀🚀🔥🔥💰💰"
	if got := quality.Assess(job); got.Score != 95 {
		t.Errorf("emoji: Score = %d, want 95", got.Score)
	}
}

func TestAssess_EmptyDescriptionIsMissingNotShort(t *testing.T) {
	job := cleanJob()
	job.Description = ""
	got := quality.Assess(job)
	// Empty skips the short-description check but trips the missing one.
	if got.Score != 90 {
		t.Fatalf("Score = %d, want 90 (issues: %+v)", got.Score, got.Issues)
	}
}

func TestAssess_ScoreClampsAtZero(t *testing.T) {
	job := model.Job{
		Title: "Job",
		Description: strings.Join([]string{
			"wire transfer", "pay to apply", "registration fee", "processing fee",
			"western union", "send money", "upfront payment", "training fee",
			"starter kit purchase", "crypto wallet",
		}, " and ") + " pad the text out beyond one hundred characters so only the scam checks fire here.",
		Company:  "",
		ApplyURL: "",
	}
	got := quality.Assess(job)
	if got.Score != 0 {
		t.Errorf("Score = %d, want 0", got.Score)
	}
	if got.Passed {
		t.Error("Passed should be false at 0")
	}
}
