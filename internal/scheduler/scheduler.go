// Package scheduler wires up the cron job that periodically runs the
// campaign processor over every ACTIVE campaign (the fleet tick).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jobpilot/campaign-service/internal/campaign"
	"jobpilot/campaign-service/internal/processor"
)

// CampaignSource lists the campaigns a tick must visit.
type CampaignSource interface {
	ActiveCampaigns(ctx context.Context) ([]campaign.Campaign, error)
}

// CampaignProcessor runs one campaign's cycle.
type CampaignProcessor interface {
	Process(ctx context.Context, c campaign.Campaign) (processor.Result, error)
}

// TickResult summarises one fleet tick.
type TickResult struct {
	CampaignsProcessed      int
	JobsMatchedTotal        int
	ApplicationsQueuedTotal int
	Errors                  int
	Skipped                 int // lock held elsewhere
}

// Scheduler wraps robfig/cron and manages the fleet loop. Campaigns are
// mutually independent: one campaign's failure is counted and isolated,
// never aborting the tick.
type Scheduler struct {
	cron            *cron.Cron
	source          CampaignSource
	proc            CampaignProcessor
	locker          Locker
	logger          *zap.Logger
	spec            string // cron spec, e.g. "@every 15m"
	campaignTimeout time.Duration
}

// New creates a Scheduler that fires every interval.
func New(source CampaignSource, proc CampaignProcessor, locker Locker, logger *zap.Logger, interval, campaignTimeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		source:          source,
		proc:            proc,
		locker:          locker,
		logger:          logger,
		spec:            fmt.Sprintf("@every %s", interval),
		campaignTimeout: campaignTimeout,
	}
}

// Start registers the job and starts the scheduler. Also runs one tick
// immediately so campaigns are processed without waiting for the first
// interval.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.Tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("fleet scheduler started", zap.String("spec", s.spec))

	// Run immediately on startup (non-blocking)
	go s.Tick(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running tick.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("fleet scheduler stopped")
}

// Tick processes every ACTIVE campaign once. Safe to run repeatedly or
// overlapping: per-campaign locks and the processor's pair-row idempotency
// make a duplicate tick a no-op.
func (s *Scheduler) Tick(ctx context.Context) TickResult {
	var result TickResult

	campaigns, err := s.source.ActiveCampaigns(ctx)
	if err != nil {
		s.logger.Error("loading active campaigns failed", zap.Error(err))
		result.Errors++
		return result
	}
	if len(campaigns) == 0 {
		s.logger.Debug("no active campaigns")
		return result
	}

	s.logger.Info("fleet tick started", zap.Int("campaigns", len(campaigns)))

	for _, c := range campaigns {
		release, ok := s.locker.TryAcquire(ctx, c.ID)
		if !ok {
			s.logger.Debug("campaign locked elsewhere; skipping",
				zap.String("campaign_id", c.ID))
			result.Skipped++
			continue
		}

		cctx, cancel := context.WithTimeout(ctx, s.campaignTimeout)
		res, err := s.proc.Process(cctx, c)
		cancel()
		release()

		if err != nil {
			s.logger.Error("campaign processing failed",
				zap.String("campaign_id", c.ID),
				zap.Error(err),
			)
			result.Errors++
			continue
		}

		result.CampaignsProcessed++
		result.JobsMatchedTotal += res.JobsMatched
		result.ApplicationsQueuedTotal += res.JobsApplied
	}

	s.logger.Info("fleet tick complete",
		zap.Int("campaigns_processed", result.CampaignsProcessed),
		zap.Int("jobs_matched", result.JobsMatchedTotal),
		zap.Int("applications_queued", result.ApplicationsQueuedTotal),
		zap.Int("errors", result.Errors),
		zap.Int("skipped", result.Skipped),
	)
	return result
}
