package processor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jobpilot/campaign-service/internal/campaign"
)

// Reject is the user-facing reject action: it transitions the pair row
// PENDING → REJECTED and feeds the rejection learner. Re-rejecting a
// terminal row returns campaign.ErrForbiddenTransition.
func (p *Processor) Reject(ctx context.Context, campaignID, jobID, reason string) error {
	c, err := p.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("reject: %w", err)
	}

	cj, err := p.store.GetCampaignJob(ctx, campaignID, jobID)
	if err != nil {
		return fmt.Errorf("reject: %w", err)
	}
	if !campaign.IsJobTransitionAllowed(cj.Status, campaign.JobStatusRejected) {
		return fmt.Errorf("reject (%s, %s): %s → %s: %w",
			campaignID, jobID, cj.Status, campaign.JobStatusRejected, campaign.ErrForbiddenTransition)
	}

	if err := p.store.MarkRejected(ctx, campaignID, jobID, reason, time.Now().UTC()); err != nil {
		return fmt.Errorf("reject: %w", err)
	}

	// Feedback is best-effort: the rejection stands even if recording fails.
	if p.rejections != nil {
		job, err := p.store.GetJob(ctx, jobID)
		if err != nil {
			p.logger.Warn("loading job for rejection feedback failed",
				zap.String("campaign_id", campaignID),
				zap.String("job_id", jobID),
				zap.Error(err),
			)
			return nil
		}
		p.rejections.RecordRejection(ctx, c.UserID, *job, reason)
	}
	return nil
}
