package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpilot/campaign-service/internal/model"
)

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when a campaign, job or pair row does not exist.
var ErrNotFound = fmt.Errorf("not found")

// ErrForbiddenTransition is returned when a status change is rejected by the
// state machine.
var ErrForbiddenTransition = fmt.Errorf("forbidden status transition")

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the PostgreSQL persistence layer for campaigns, campaign_jobs,
// resumes and the job feed. All SQL lives here; business logic stays in the
// processor.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a configured Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const campaignColumns = `
	id, user_id, resume_id, target_roles, target_locations, target_countries,
	target_companies, remote_only, salary_min, salary_max, negative_keywords,
	auto_apply, daily_limit, min_match_score, status,
	jobs_found, jobs_applied, interviews, offers,
	created_at, updated_at, completed_at`

func scanCampaign(row pgx.Row) (*Campaign, error) {
	var c Campaign
	var status string
	if err := row.Scan(
		&c.ID, &c.UserID, &c.ResumeID, &c.TargetRoles, &c.TargetLocations,
		&c.TargetCountries, &c.TargetCompanies, &c.RemoteOnly,
		&c.SalaryMin, &c.SalaryMax, &c.NegativeKeywords,
		&c.AutoApply, &c.DailyLimit, &c.MinMatchScore, &status,
		&c.Stats.JobsFound, &c.Stats.JobsApplied, &c.Stats.Interviews, &c.Stats.Offers,
		&c.CreatedAt, &c.UpdatedAt, &c.CompletedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	c.Status = parsed
	return &c, nil
}

// ActiveCampaigns returns every campaign with status ACTIVE.
func (s *Store) ActiveCampaigns(ctx context.Context) ([]Campaign, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE status = 'ACTIVE'`)
	if err != nil {
		return nil, fmt.Errorf("query active campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// GetCampaign returns a single campaign by id.
func (s *Store) GetCampaign(ctx context.Context, id string) (*Campaign, error) {
	c, err := scanCampaign(s.pool.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign %s: %w", id, err)
	}
	return c, nil
}

// CreateCampaign validates and inserts a new campaign, returning its id.
func (s *Store) CreateCampaign(ctx context.Context, c Campaign) (string, error) {
	if c.Status == "" {
		c.Status = StatusActive
	}
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("create campaign: %w", err)
	}
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO campaigns (
		   id, user_id, resume_id, target_roles, target_locations,
		   target_countries, target_companies, remote_only, salary_min,
		   salary_max, negative_keywords, auto_apply, daily_limit,
		   min_match_score, status, created_at, updated_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW(),NOW())`,
		id, c.UserID, c.ResumeID, c.TargetRoles, c.TargetLocations,
		c.TargetCountries, c.TargetCompanies, c.RemoteOnly, c.SalaryMin,
		c.SalaryMax, c.NegativeKeywords, c.AutoApply, c.DailyLimit,
		c.MinMatchScore, string(c.Status),
	)
	if err != nil {
		return "", fmt.Errorf("insert campaign: %w", err)
	}
	return id, nil
}

// UpdateCampaignStatus transitions a campaign to a new status after checking
// the state machine. A COMPLETED transition also stamps completed_at.
func (s *Store) UpdateCampaignStatus(ctx context.Context, id string, to Status) error {
	current, err := s.GetCampaign(ctx, id)
	if err != nil {
		return err
	}
	if !IsTransitionAllowed(current.Status, to) {
		return fmt.Errorf("campaign %s: %s → %s: %w", id, current.Status, to, ErrForbiddenTransition)
	}

	// Guard on the previously read status so a concurrent writer cannot
	// sneak an invalid transition through.
	tag, err := s.pool.Exec(ctx,
		`UPDATE campaigns
		 SET status       = $1,
		     completed_at = CASE WHEN $1 = 'COMPLETED' THEN NOW() ELSE completed_at END,
		     updated_at   = NOW()
		 WHERE id = $2 AND status = $3`,
		string(to), id, string(current.Status),
	)
	if err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campaign %s changed concurrently: %w", id, ErrForbiddenTransition)
	}
	return nil
}

// IncrementStats advances the campaign's cumulative counters with a single
// atomic UPDATE. Called exactly once per processing cycle.
func (s *Store) IncrementStats(ctx context.Context, id string, jobsFound, jobsApplied int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE campaigns
		 SET jobs_found   = jobs_found + $1,
		     jobs_applied = jobs_applied + $2,
		     updated_at   = NOW()
		 WHERE id = $3`,
		jobsFound, jobsApplied, id,
	)
	if err != nil {
		return fmt.Errorf("increment campaign stats: %w", err)
	}
	return nil
}

// ─── Resumes ─────────────────────────────────────────────────────────────────

// GetResume returns a resume row by id.
func (s *Store) GetResume(ctx context.Context, id string) (*model.Resume, error) {
	var r model.Resume
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, parsed, COALESCE(summary, '')
		 FROM resumes WHERE id = $1`, id,
	).Scan(&r.ID, &r.UserID, &r.Title, &r.Parsed, &r.Summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get resume %s: %w", id, err)
	}
	return &r, nil
}

// ─── Job feed ────────────────────────────────────────────────────────────────

const jobColumns = `
	id, external_id, title, company, location, remote, salary_min, salary_max,
	COALESCE(description, ''), COALESCE(apply_url, ''), source, posted_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	if err := row.Scan(
		&j.ID, &j.ExternalID, &j.Title, &j.Company, &j.Location, &j.Remote,
		&j.SalaryMin, &j.SalaryMax, &j.Description, &j.ApplyURL, &j.Source,
		&j.PostedAt,
	); err != nil {
		return nil, err
	}
	return &j, nil
}

// GetJob returns a job feed row by id.
func (s *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_feed WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return j, nil
}

// CandidateJobs returns up to limit fresh candidates for the campaign:
// jobs not yet recorded against it, with the campaign's negative keywords
// excluded at the source.
func (s *Store) CandidateJobs(ctx context.Context, c Campaign, limit int) ([]model.Job, error) {
	patterns := make([]string, 0, len(c.NegativeKeywords))
	for _, kw := range c.NegativeKeywords {
		if kw == "" {
			continue
		}
		patterns = append(patterns, "%"+kw+"%")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM job_feed j
		 WHERE NOT EXISTS (
		   SELECT 1 FROM campaign_jobs cj
		   WHERE cj.campaign_id = $1 AND cj.job_id = j.id
		 )
		 AND NOT (j.title ILIKE ANY($2) OR j.description ILIKE ANY($2))
		 ORDER BY j.posted_at DESC NULLS LAST
		 LIMIT $3`,
		c.ID, patterns, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidate jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// ─── Campaign jobs ───────────────────────────────────────────────────────────

const campaignJobColumns = `
	campaign_id, job_id, match_score, adjusted_score, status,
	COALESCE(rejection_reason, ''), created_at, applied_at, rejected_at`

func scanCampaignJob(row pgx.Row) (*CampaignJob, error) {
	var cj CampaignJob
	var status string
	if err := row.Scan(
		&cj.CampaignID, &cj.JobID, &cj.MatchScore, &cj.AdjustedScore, &status,
		&cj.RejectionReason, &cj.CreatedAt, &cj.AppliedAt, &cj.RejectedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := ParseJobStatus(status)
	if err != nil {
		return nil, err
	}
	cj.Status = parsed
	return &cj, nil
}

// GetCampaignJob returns the pair row for (campaignID, jobID).
func (s *Store) GetCampaignJob(ctx context.Context, campaignID, jobID string) (*CampaignJob, error) {
	cj, err := scanCampaignJob(s.pool.QueryRow(ctx,
		`SELECT `+campaignJobColumns+`
		 FROM campaign_jobs WHERE campaign_id = $1 AND job_id = $2`,
		campaignID, jobID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("campaign job (%s, %s): %w", campaignID, jobID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign job (%s, %s): %w", campaignID, jobID, err)
	}
	return cj, nil
}

// CreateCampaignJob inserts a new PENDING pair row. Returns false when the
// pair already exists; this is the idempotency boundary for repeated cycles.
func (s *Store) CreateCampaignJob(ctx context.Context, cj CampaignJob) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO campaign_jobs
		   (campaign_id, job_id, match_score, adjusted_score, status, created_at)
		 VALUES ($1, $2, $3, $4, 'PENDING', NOW())
		 ON CONFLICT (campaign_id, job_id) DO NOTHING`,
		cj.CampaignID, cj.JobID, cj.MatchScore, cj.AdjustedScore,
	)
	if err != nil {
		return false, fmt.Errorf("insert campaign job (%s, %s): %w", cj.CampaignID, cj.JobID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkApplied transitions a pair row PENDING → APPLIED and stamps applied_at.
// Returns ErrForbiddenTransition when the row is no longer PENDING.
func (s *Store) MarkApplied(ctx context.Context, campaignID, jobID string, at time.Time) error {
	return s.transitionJob(ctx, campaignID, jobID, JobStatusApplied,
		`UPDATE campaign_jobs
		 SET status = 'APPLIED', applied_at = $3
		 WHERE campaign_id = $1 AND job_id = $2 AND status = 'PENDING'`,
		campaignID, jobID, at)
}

// MarkRejected transitions a pair row PENDING → REJECTED, recording the
// user-supplied reason.
func (s *Store) MarkRejected(ctx context.Context, campaignID, jobID, reason string, at time.Time) error {
	return s.transitionJob(ctx, campaignID, jobID, JobStatusRejected,
		`UPDATE campaign_jobs
		 SET status = 'REJECTED', rejection_reason = $4, rejected_at = $3
		 WHERE campaign_id = $1 AND job_id = $2 AND status = 'PENDING'`,
		campaignID, jobID, at, reason)
}

// transitionJob validates the state machine against the current row, then
// runs the guarded UPDATE. The WHERE status = 'PENDING' guard makes the
// transition safe under concurrent writers.
func (s *Store) transitionJob(ctx context.Context, campaignID, jobID string, to JobStatus, sql string, args ...any) error {
	current, err := s.GetCampaignJob(ctx, campaignID, jobID)
	if err != nil {
		return err
	}
	if !IsJobTransitionAllowed(current.Status, to) {
		return fmt.Errorf("campaign job (%s, %s): %s → %s: %w",
			campaignID, jobID, current.Status, to, ErrForbiddenTransition)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("transition campaign job (%s, %s) to %s: %w", campaignID, jobID, to, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campaign job (%s, %s) changed concurrently: %w",
			campaignID, jobID, ErrForbiddenTransition)
	}
	return nil
}

// CountAppliedToday counts the campaign's APPLIED rows stamped since UTC
// midnight. Re-read from the store every cycle on purpose: the quota must
// survive process restarts and overlapping ticks.
func (s *Store) CountAppliedToday(ctx context.Context, campaignID string, now time.Time) (int, error) {
	dayStart := now.UTC().Truncate(24 * time.Hour)
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM campaign_jobs
		 WHERE campaign_id = $1 AND status = 'APPLIED' AND applied_at >= $2`,
		campaignID, dayStart,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count applied today: %w", err)
	}
	return n, nil
}

// ListCampaignJobs returns the campaign's pair rows, optionally filtered by
// status, newest first.
func (s *Store) ListCampaignJobs(ctx context.Context, campaignID string, status JobStatus) ([]CampaignJob, error) {
	const base = `SELECT ` + campaignJobColumns + ` FROM campaign_jobs WHERE campaign_id = $1`

	var (
		rows pgx.Rows
		err  error
	)
	if status != "" {
		rows, err = s.pool.Query(ctx, base+` AND status = $2 ORDER BY created_at DESC`, campaignID, string(status))
	} else {
		rows, err = s.pool.Query(ctx, base+` ORDER BY created_at DESC`, campaignID)
	}
	if err != nil {
		return nil, fmt.Errorf("list campaign jobs: %w", err)
	}
	defer rows.Close()

	var out []CampaignJob
	for rows.Next() {
		cj, err := scanCampaignJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign job: %w", err)
		}
		out = append(out, *cj)
	}
	return out, rows.Err()
}
