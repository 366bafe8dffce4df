package campaign_test

import (
	"testing"

	"jobpilot/campaign-service/internal/campaign"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"ACTIVE", "PAUSED", "COMPLETED"}
	for _, s := range valid {
		got, err := campaign.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"UNKNOWN", "active", ""} {
		if _, err := campaign.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── IsTransitionAllowed ────────────────────────────────────────────────────

func TestIsTransitionAllowed_Valid(t *testing.T) {
	cases := []struct {
		from campaign.Status
		to   campaign.Status
	}{
		{campaign.StatusActive, campaign.StatusPaused},
		{campaign.StatusPaused, campaign.StatusActive},
		{campaign.StatusActive, campaign.StatusCompleted},
	}
	for _, c := range cases {
		if !campaign.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_CompletedIsTerminal(t *testing.T) {
	targets := []campaign.Status{
		campaign.StatusActive, campaign.StatusPaused, campaign.StatusCompleted,
	}
	for _, to := range targets {
		if campaign.IsTransitionAllowed(campaign.StatusCompleted, to) {
			t.Errorf("IsTransitionAllowed(COMPLETED → %s) should be false (terminal state)", to)
		}
	}
}

func TestIsTransitionAllowed_PausedCannotComplete(t *testing.T) {
	if campaign.IsTransitionAllowed(campaign.StatusPaused, campaign.StatusCompleted) {
		t.Error("IsTransitionAllowed(PAUSED → COMPLETED) should be false")
	}
}

func TestIsTransitionAllowed_Self(t *testing.T) {
	all := []campaign.Status{
		campaign.StatusActive, campaign.StatusPaused, campaign.StatusCompleted,
	}
	for _, s := range all {
		if campaign.IsTransitionAllowed(s, s) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}

// ── Validate ───────────────────────────────────────────────────────────────

func TestCampaignValidate(t *testing.T) {
	base := func() campaign.Campaign {
		return campaign.Campaign{
			UserID:        "user-1",
			ResumeID:      "resume-1",
			DailyLimit:    5,
			MinMatchScore: 60,
			Status:        campaign.StatusActive,
		}
	}

	valid := base()
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid campaign returned error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*campaign.Campaign)
	}{
		{"missing user id", func(c *campaign.Campaign) { c.UserID = "" }},
		{"missing resume id", func(c *campaign.Campaign) { c.ResumeID = "" }},
		{"negative daily limit", func(c *campaign.Campaign) { c.DailyLimit = -1 }},
		{"score below range", func(c *campaign.Campaign) { c.MinMatchScore = -1 }},
		{"score above range", func(c *campaign.Campaign) { c.MinMatchScore = 101 }},
		{"unknown status", func(c *campaign.Campaign) { c.Status = "DRAFT" }},
	}
	for _, tc := range cases {
		c := base()
		tc.mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
	}
}
