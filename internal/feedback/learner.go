// Package feedback implements the two online learners that tune match
// scores per user: a rejection penalty and an application-preference boost,
// both driven by nearest-neighbour similarity over past jobs.
//
// Both learners fail open: any store or embedding error degrades to "no
// feedback" (penalty 0, boost 0) and never blocks a candidate from being
// scored. Recording failures are logged and dropped, never retried.
package feedback

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"jobpilot/campaign-service/internal/model"
	"jobpilot/campaign-service/internal/vector"
)

// Kind names one learner's per-user collection family.
type Kind string

const (
	KindRejected Kind = "rejected"
	KindApplied  Kind = "applied"
)

// Collection is the typed (user, kind) key for a feedback collection. The
// string form exists only at the similarity-store boundary.
type Collection struct {
	UserID string
	Kind   Kind
}

// Name renders the store-level collection identifier.
func (c Collection) Name() string {
	return fmt.Sprintf("%s_%s", c.Kind, c.UserID)
}

// Fixed thresholds and adjustment levels. Deliberately not configurable per
// campaign.
const (
	topK = 5

	penaltyHighSimilarity   = 0.85
	penaltyMediumSimilarity = 0.70
	penaltyHigh             = 0.50
	penaltyMedium           = 0.25

	boostHighSimilarity   = 0.80
	boostMediumSimilarity = 0.65
	boostHigh             = 15
	boostMedium           = 8
)

// summarize builds the short text document embedded for a job.
func summarize(job model.Job) string {
	desc := job.Description
	if len(desc) > 300 {
		desc = desc[:300]
	}
	return fmt.Sprintf("%s at %s, %s. %s", job.Title, job.Company, job.Location, desc)
}

// nearestSimilarity returns the single highest similarity between the job
// and the collection's documents. The error is surfaced so callers can pick
// their fallback explicitly.
func nearestSimilarity(ctx context.Context, store vector.SimilarityStore, col Collection, job model.Job) (float64, error) {
	matches, err := store.Search(ctx, col.Name(), summarize(job), topK)
	if err != nil {
		return 0, err
	}
	best := 0.0
	for _, m := range matches {
		if m.Score > best {
			best = m.Score
		}
	}
	return best, nil
}

// ─── Rejection learner ───────────────────────────────────────────────────────

// RejectionLearner penalises candidates similar to jobs the user explicitly
// rejected.
type RejectionLearner struct {
	store  vector.SimilarityStore
	logger *zap.Logger
}

// NewRejectionLearner returns a configured RejectionLearner.
func NewRejectionLearner(store vector.SimilarityStore, logger *zap.Logger) *RejectionLearner {
	return &RejectionLearner{store: store, logger: logger}
}

// RecordRejection upserts the job's summary into the user's rejection
// collection. Failures are dropped.
func (l *RejectionLearner) RecordRejection(ctx context.Context, userID string, job model.Job, reason string) {
	col := Collection{UserID: userID, Kind: KindRejected}
	err := l.store.Upsert(ctx, col.Name(), job.ID, summarize(job), map[string]string{
		"company": job.Company,
		"title":   job.Title,
		"reason":  reason,
		"source":  job.Source,
	})
	if err != nil {
		l.logger.Warn("recording rejection feedback failed; dropping",
			zap.String("user_id", userID),
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
	}
}

// Penalty returns the multiplicative penalty for the (user, job) pair:
// 0.50 when the nearest rejected job is ≥0.85 similar, 0.25 at ≥0.70,
// otherwise 0. Errors and empty collections yield 0.
func (l *RejectionLearner) Penalty(ctx context.Context, userID string, job model.Job) float64 {
	col := Collection{UserID: userID, Kind: KindRejected}
	best, err := nearestSimilarity(ctx, l.store, col, job)
	if err != nil {
		l.logger.Warn("rejection similarity lookup failed; using zero penalty",
			zap.String("user_id", userID),
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return 0
	}
	switch {
	case best >= penaltyHighSimilarity:
		return penaltyHigh
	case best >= penaltyMediumSimilarity:
		return penaltyMedium
	default:
		return 0
	}
}

// AdjustedScore applies the penalty to a base score:
// round(base * (1 - penalty)).
func (l *RejectionLearner) AdjustedScore(ctx context.Context, userID string, job model.Job, base int) int {
	penalty := l.Penalty(ctx, userID, job)
	return int(math.Round(float64(base) * (1 - penalty)))
}

// ─── Preference learner ──────────────────────────────────────────────────────

// PreferenceLearner boosts candidates similar to jobs the user applied to.
// Structurally the mirror of RejectionLearner over a separate collection.
type PreferenceLearner struct {
	store  vector.SimilarityStore
	logger *zap.Logger
}

// NewPreferenceLearner returns a configured PreferenceLearner.
func NewPreferenceLearner(store vector.SimilarityStore, logger *zap.Logger) *PreferenceLearner {
	return &PreferenceLearner{store: store, logger: logger}
}

// RecordApplication upserts the job's summary into the user's applied
// collection. Failures are dropped.
func (l *PreferenceLearner) RecordApplication(ctx context.Context, userID string, job model.Job) {
	col := Collection{UserID: userID, Kind: KindApplied}
	err := l.store.Upsert(ctx, col.Name(), job.ID, summarize(job), map[string]string{
		"company": job.Company,
		"title":   job.Title,
		"source":  job.Source,
	})
	if err != nil {
		l.logger.Warn("recording application feedback failed; dropping",
			zap.String("user_id", userID),
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
	}
}

// Boost returns the additive boost for the (user, job) pair: +15 when the
// nearest applied job is ≥0.80 similar, +8 at ≥0.65, otherwise 0. Errors and
// empty collections yield 0.
func (l *PreferenceLearner) Boost(ctx context.Context, userID string, job model.Job) int {
	col := Collection{UserID: userID, Kind: KindApplied}
	best, err := nearestSimilarity(ctx, l.store, col, job)
	if err != nil {
		l.logger.Warn("preference similarity lookup failed; using zero boost",
			zap.String("user_id", userID),
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return 0
	}
	switch {
	case best >= boostHighSimilarity:
		return boostHigh
	case best >= boostMediumSimilarity:
		return boostMedium
	default:
		return 0
	}
}

// Forget removes a user's entire collection for one learner kind. Used when
// a user clears their feedback history.
func Forget(ctx context.Context, store vector.SimilarityStore, userID string, kind Kind) error {
	col := Collection{UserID: userID, Kind: kind}
	if err := store.DeleteCollection(ctx, col.Name()); err != nil {
		return fmt.Errorf("forget %s feedback for user %s: %w", kind, userID, err)
	}
	return nil
}
