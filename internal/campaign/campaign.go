// Package campaign defines the campaign domain: the standing search intent,
// the per-job match records and the state machines that guard both.
//
// Valid campaign status graph:
//
//	ACTIVE ◄──► PAUSED
//	   │
//	   └──► COMPLETED
//
// COMPLETED is terminal.
package campaign

import (
	"fmt"
	"time"
)

// Status values mirror the campaign_status enum in PostgreSQL.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPaused    Status = "PAUSED"
	StatusCompleted Status = "COMPLETED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusActive: {StatusPaused, StatusCompleted},
	StatusPaused: {StatusActive},
	// COMPLETED is terminal — no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusActive, StatusPaused, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown campaign status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Stats holds the campaign's cumulative counters. jobs_found and
// jobs_applied are advanced by the processor; interviews and offers by the
// tracking surface.
type Stats struct {
	JobsFound   int
	JobsApplied int
	Interviews  int
	Offers      int
}

// Campaign is one user's standing job-search intent.
type Campaign struct {
	ID               string
	UserID           string
	ResumeID         string
	TargetRoles      []string
	TargetLocations  []string
	TargetCountries  []string
	TargetCompanies  []string
	RemoteOnly       bool
	SalaryMin        *int
	SalaryMax        *int
	NegativeKeywords []string
	AutoApply        bool
	DailyLimit       int
	MinMatchScore    int
	Status           Status
	Stats            Stats
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// Validate checks the invariants a campaign row must satisfy before it is
// written or processed.
func (c *Campaign) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("campaign user id is required")
	}
	if c.ResumeID == "" {
		return fmt.Errorf("campaign resume id is required")
	}
	if c.DailyLimit < 0 {
		return fmt.Errorf("daily limit must be >= 0, got %d", c.DailyLimit)
	}
	if c.MinMatchScore < 0 || c.MinMatchScore > 100 {
		return fmt.Errorf("min match score must be in [0,100], got %d", c.MinMatchScore)
	}
	if _, err := ParseStatus(string(c.Status)); err != nil {
		return err
	}
	return nil
}
