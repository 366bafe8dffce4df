// Package processor contains the campaign processing cycle: it turns one
// standing campaign into a bounded stream of scored, filtered,
// quota-respecting apply decisions.
package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobpilot/campaign-service/internal/campaign"
	"jobpilot/campaign-service/internal/match"
	"jobpilot/campaign-service/internal/model"
	"jobpilot/campaign-service/internal/quality"
)

// ErrResumeNotReady is returned when the campaign's resume is missing or
// not yet parsed. The cycle aborts cleanly; the fleet counts it as an error.
var ErrResumeNotReady = errors.New("resume missing or not parsed")

// Store is the persistence surface the processor consumes.
type Store interface {
	GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error)
	GetResume(ctx context.Context, id string) (*model.Resume, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	CandidateJobs(ctx context.Context, c campaign.Campaign, limit int) ([]model.Job, error)
	GetCampaignJob(ctx context.Context, campaignID, jobID string) (*campaign.CampaignJob, error)
	CreateCampaignJob(ctx context.Context, cj campaign.CampaignJob) (bool, error)
	MarkApplied(ctx context.Context, campaignID, jobID string, at time.Time) error
	MarkRejected(ctx context.Context, campaignID, jobID, reason string, at time.Time) error
	CountAppliedToday(ctx context.Context, campaignID string, now time.Time) (int, error)
	IncrementStats(ctx context.Context, campaignID string, jobsFound, jobsApplied int) error
}

// RejectionFeedback is the rejection learner's surface. Implementations
// fail open (penalty 0).
type RejectionFeedback interface {
	Penalty(ctx context.Context, userID string, job model.Job) float64
	RecordRejection(ctx context.Context, userID string, job model.Job, reason string)
}

// PreferenceFeedback is the preference learner's surface. Implementations
// fail open (boost 0).
type PreferenceFeedback interface {
	Boost(ctx context.Context, userID string, job model.Job) int
	RecordApplication(ctx context.Context, userID string, job model.Job)
}

// Submitter hands one application to the external submission worker.
type Submitter interface {
	Submit(ctx context.Context, userID, jobID, resumeID string, autoSubmit bool)
}

// Result summarises one processing cycle for one campaign.
type Result struct {
	JobsMatched int
	JobsApplied int
	Reason      string // set on a no-op cycle, e.g. "quota_exhausted"
}

const (
	// Candidate pools are oversampled so enough survive filtering.
	oversampleFactor = 2

	defaultCandidateTimeout = 10 * time.Second
)

// Processor runs the per-campaign cycle.
type Processor struct {
	store            Store
	matcher          match.Matcher
	rejections       RejectionFeedback  // optional
	preferences      PreferenceFeedback // optional
	submitter        Submitter
	logger           *zap.Logger
	candidateTimeout time.Duration
}

// New returns a configured Processor. rejections and preferences may be nil;
// scores then pass through unadjusted.
func New(store Store, matcher match.Matcher, rejections RejectionFeedback, preferences PreferenceFeedback, submitter Submitter, logger *zap.Logger) *Processor {
	return &Processor{
		store:            store,
		matcher:          matcher,
		rejections:       rejections,
		preferences:      preferences,
		submitter:        submitter,
		logger:           logger,
		candidateTimeout: defaultCandidateTimeout,
	}
}

// WithCandidateTimeout overrides the per-candidate I/O budget.
func (p *Processor) WithCandidateTimeout(d time.Duration) *Processor {
	p.candidateTimeout = d
	return p
}

// Process runs one cycle for the campaign: resolve the resume, compute the
// remaining daily quota, score an oversampled candidate pool and queue up to
// `remaining` applications. Per-candidate failures are skipped; precondition
// failures abort the cycle with no partial writes.
func (p *Processor) Process(ctx context.Context, c campaign.Campaign) (Result, error) {
	log := p.logger.With(
		zap.String("campaign_id", c.ID),
		zap.String("user_id", c.UserID),
	)

	if c.Status != campaign.StatusActive {
		log.Debug("skipping campaign", zap.String("status", string(c.Status)))
		return Result{Reason: "campaign_not_active"}, nil
	}

	resume, err := p.store.GetResume(ctx, c.ResumeID)
	if err != nil {
		return Result{}, fmt.Errorf("resume %s: %w", c.ResumeID, ErrResumeNotReady)
	}
	if !resume.Parsed {
		return Result{}, fmt.Errorf("resume %s is not parsed: %w", c.ResumeID, ErrResumeNotReady)
	}

	now := time.Now().UTC()
	appliedToday, err := p.store.CountAppliedToday(ctx, c.ID, now)
	if err != nil {
		return Result{}, fmt.Errorf("count applied today: %w", err)
	}

	remaining := c.DailyLimit - appliedToday
	if remaining <= 0 {
		log.Info("daily quota exhausted",
			zap.Int("daily_limit", c.DailyLimit),
			zap.Int("applied_today", appliedToday),
		)
		return Result{Reason: "quota_exhausted"}, nil
	}

	candidates, err := p.store.CandidateJobs(ctx, c, remaining*oversampleFactor)
	if err != nil {
		return Result{}, fmt.Errorf("fetch candidates: %w", err)
	}

	matched, queued := 0, 0
	for _, job := range candidates {
		if queued >= remaining {
			break
		}

		inserted, applied, err := p.processCandidate(ctx, log, c, *resume, job, queued < remaining)
		if err != nil {
			log.Warn("candidate skipped",
				zap.String("job_id", job.ID),
				zap.Error(err),
			)
			continue
		}
		if inserted {
			matched++
		}
		if applied {
			queued++
		}
	}

	if matched > 0 || queued > 0 {
		if err := p.store.IncrementStats(ctx, c.ID, matched, queued); err != nil {
			log.Warn("incrementing campaign stats failed", zap.Error(err))
		}
	}

	log.Info("campaign cycle complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("jobs_matched", matched),
		zap.Int("jobs_applied", queued),
	)
	return Result{JobsMatched: matched, JobsApplied: queued}, nil
}

// processCandidate runs one job through the pipeline. The returned error is
// per-candidate: the caller logs it and moves on.
func (p *Processor) processCandidate(ctx context.Context, log *zap.Logger, c campaign.Campaign, resume model.Resume, job model.Job, canApply bool) (inserted, applied bool, err error) {
	// Idempotency: a pair row from an earlier cycle means this candidate
	// was already decided.
	if _, getErr := p.store.GetCampaignJob(ctx, c.ID, job.ID); getErr == nil {
		log.Debug("candidate already recorded", zap.String("job_id", job.ID))
		return false, false, nil
	} else if !errors.Is(getErr, campaign.ErrNotFound) {
		return false, false, fmt.Errorf("check existing pair: %w", getErr)
	}

	if qa := quality.Assess(job); !qa.Passed {
		log.Debug("candidate failed quality gate",
			zap.String("job_id", job.ID),
			zap.Int("quality_score", qa.Score),
		)
		return false, false, nil
	}

	if !roleMatches(c.TargetRoles, job.Title) {
		return false, false, nil
	}
	if !locationMatches(c, job) {
		return false, false, nil
	}
	if !salaryAcceptable(c, job) {
		return false, false, nil
	}

	cctx, cancel := context.WithTimeout(ctx, p.candidateTimeout)
	defer cancel()

	base, err := p.matcher.Score(cctx, resume, job)
	if err != nil {
		return false, false, fmt.Errorf("base match: %w", err)
	}

	penalty := 0.0
	if p.rejections != nil {
		penalty = p.rejections.Penalty(cctx, c.UserID, job)
	}
	boost := 0
	if p.preferences != nil {
		boost = p.preferences.Boost(cctx, c.UserID, job)
	}
	adjusted := match.Compose(base.Score, penalty, boost)

	if adjusted < c.MinMatchScore {
		log.Debug("candidate below minimum match score",
			zap.String("job_id", job.ID),
			zap.Int("base_score", base.Score),
			zap.Int("adjusted_score", adjusted),
			zap.Int("min_match_score", c.MinMatchScore),
		)
		return false, false, nil
	}

	inserted, err = p.store.CreateCampaignJob(ctx, campaign.CampaignJob{
		CampaignID:    c.ID,
		JobID:         job.ID,
		MatchScore:    base.Score,
		AdjustedScore: adjusted,
		Status:        campaign.JobStatusPending,
	})
	if err != nil {
		return false, false, fmt.Errorf("persist match: %w", err)
	}
	if !inserted {
		// Raced with a concurrent cycle; the other writer owns the pair.
		return false, false, nil
	}

	log.Info("job matched",
		zap.String("job_id", job.ID),
		zap.Int("base_score", base.Score),
		zap.Int("adjusted_score", adjusted),
	)

	if !c.AutoApply || !canApply {
		return true, false, nil
	}

	now := time.Now().UTC()
	if err := p.store.MarkApplied(ctx, c.ID, job.ID, now); err != nil {
		return true, false, fmt.Errorf("mark applied: %w", err)
	}
	if p.preferences != nil {
		p.preferences.RecordApplication(ctx, c.UserID, job)
	}
	p.submitter.Submit(ctx, c.UserID, job.ID, c.ResumeID, true)

	log.Info("application queued", zap.String("job_id", job.ID))
	return true, true, nil
}

// ─── Structural filters ──────────────────────────────────────────────────────

// roleMatches requires a case-insensitive substring hit against any target
// role. An empty target list passes everything.
func roleMatches(roles []string, title string) bool {
	if len(roles) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, role := range roles {
		if role == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(role)) {
			return true
		}
	}
	return false
}

// locationMatches enforces the campaign's geography: remote_only campaigns
// require a remote listing outright; otherwise a listing passes on a target
// location/country hit or by being remote.
func locationMatches(c campaign.Campaign, job model.Job) bool {
	if c.RemoteOnly {
		return job.Remote
	}
	if len(c.TargetLocations) == 0 && len(c.TargetCountries) == 0 {
		return true
	}
	if job.Remote {
		return true
	}
	lower := strings.ToLower(job.Location)
	for _, loc := range append(append([]string{}, c.TargetLocations...), c.TargetCountries...) {
		if loc == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(loc)) {
			return true
		}
	}
	return false
}

// salaryAcceptable rejects a listing whose known salary ceiling is below the
// campaign's floor. Unknown salaries pass.
func salaryAcceptable(c campaign.Campaign, job model.Job) bool {
	if c.SalaryMin == nil || job.SalaryMax == nil {
		return true
	}
	return *job.SalaryMax >= *c.SalaryMin
}
