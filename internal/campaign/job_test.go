package campaign_test

import (
	"testing"

	"jobpilot/campaign-service/internal/campaign"
)

// ── ParseJobStatus ─────────────────────────────────────────────────────────

func TestParseJobStatus_ValidValues(t *testing.T) {
	valid := []string{"PENDING", "APPLIED", "REJECTED"}
	for _, s := range valid {
		got, err := campaign.ParseJobStatus(s)
		if err != nil {
			t.Errorf("ParseJobStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseJobStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseJobStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"MATCHED", "pending", ""} {
		if _, err := campaign.ParseJobStatus(s); err == nil {
			t.Errorf("ParseJobStatus(%q) expected error, got nil", s)
		}
	}
}

// ── IsJobTransitionAllowed ─────────────────────────────────────────────────

func TestIsJobTransitionAllowed_FromPending(t *testing.T) {
	for _, to := range []campaign.JobStatus{
		campaign.JobStatusApplied, campaign.JobStatusRejected,
	} {
		if !campaign.IsJobTransitionAllowed(campaign.JobStatusPending, to) {
			t.Errorf("IsJobTransitionAllowed(PENDING → %s) should be true", to)
		}
	}
}

// No row ever regresses: APPLIED and REJECTED are terminal with respect to
// each other and to PENDING.
func TestIsJobTransitionAllowed_FromTerminal(t *testing.T) {
	terminals := []campaign.JobStatus{campaign.JobStatusApplied, campaign.JobStatusRejected}
	targets := []campaign.JobStatus{
		campaign.JobStatusPending, campaign.JobStatusApplied, campaign.JobStatusRejected,
	}
	for _, from := range terminals {
		for _, to := range targets {
			if campaign.IsJobTransitionAllowed(from, to) {
				t.Errorf("IsJobTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

func TestIsJobTransitionAllowed_Self(t *testing.T) {
	all := []campaign.JobStatus{
		campaign.JobStatusPending, campaign.JobStatusApplied, campaign.JobStatusRejected,
	}
	for _, s := range all {
		if campaign.IsJobTransitionAllowed(s, s) {
			t.Errorf("IsJobTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}
