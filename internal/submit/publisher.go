// Package submit hands applications off to the external submission worker
// over Redis pub/sub. Fire-and-forget: this core never waits for the
// worker's result.
package submit

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel carries CMD_SUBMIT_APPLICATION commands to the submission worker.
const Channel = "CMD_SUBMIT_APPLICATION"

// Publisher publishes submission commands.
type Publisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewPublisher returns a configured Publisher.
func NewPublisher(rdb *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{rdb: rdb, logger: logger}
}

// Submit publishes one application-submission command. Publish failures are
// logged and dropped (non-fatal).
func (p *Publisher) Submit(ctx context.Context, userID, jobID, resumeID string, autoSubmit bool) {
	event, _ := json.Marshal(map[string]any{
		"type":       Channel,
		"userId":     userID,
		"jobId":      jobID,
		"resumeId":   resumeID,
		"autoSubmit": autoSubmit,
	})
	if err := p.rdb.Publish(ctx, Channel, event).Err(); err != nil {
		p.logger.Warn("publish CMD_SUBMIT_APPLICATION failed",
			zap.String("user_id", userID),
			zap.String("job_id", jobID),
			zap.Error(err),
		)
	}
}
