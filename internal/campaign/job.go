package campaign

import (
	"fmt"
	"time"
)

// JobStatus values mirror the campaign_job_status enum in PostgreSQL.
//
// Valid graph:
//
//	PENDING ──► APPLIED
//	    │
//	    └─────► REJECTED
//
// APPLIED and REJECTED are terminal; no row ever regresses.
type JobStatus string

const (
	JobStatusPending  JobStatus = "PENDING"
	JobStatusApplied  JobStatus = "APPLIED"
	JobStatusRejected JobStatus = "REJECTED"
)

// validJobTransitions lists every allowed (from → to) pair.
var validJobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending: {JobStatusApplied, JobStatusRejected},
	// APPLIED and REJECTED are terminal — no outgoing transitions
}

// ParseJobStatus converts a raw string to a JobStatus, returning an error
// for unknown values.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	switch st {
	case JobStatusPending, JobStatusApplied, JobStatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown campaign job status %q", s)
}

// IsJobTransitionAllowed returns true when moving from → to is permitted by
// the state machine.
func IsJobTransitionAllowed(from, to JobStatus) bool {
	allowed, ok := validJobTransitions[from]
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

// CampaignJob records one job matched into one campaign. The composite key
// (CampaignID, JobID) is the idempotency boundary: at most one row per pair.
// MatchScore and AdjustedScore are immutable once the row exists.
type CampaignJob struct {
	CampaignID      string
	JobID           string
	MatchScore      int
	AdjustedScore   int
	Status          JobStatus
	RejectionReason string
	CreatedAt       time.Time
	AppliedAt       *time.Time
	RejectedAt      *time.Time
}
