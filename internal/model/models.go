// Package model defines shared data structures for the campaign engine.
package model

import "time"

// Job is a normalised job listing from the discovery feed.
type Job struct {
	ID          string
	ExternalID  string
	Title       string
	Company     string
	Location    string
	Remote      bool
	SalaryMin   *int
	SalaryMax   *int
	Description string
	ApplyURL    string
	Source      string // "adzuna", "manual", …
	PostedAt    *time.Time
}

// Resume mirrors the resumes table row relevant to matching. Summary holds
// the parsed plain-text content handed to the base matcher.
type Resume struct {
	ID      string
	UserID  string
	Title   string
	Parsed  bool
	Summary string
}
