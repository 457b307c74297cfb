package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DefaultSubject is the NATS subject verdict events are published on.
const DefaultSubject = "quiz.submissions.verdicts"

// SubmissionJudged is emitted whenever a submission reaches a terminal
// verdict, whether by synchronous evaluation, the judge coordinator, or
// an administrative override.
type SubmissionJudged struct {
	SubmissionID uint      `json:"submission_id"`
	UserID       uint      `json:"user_id"`
	ProblemID    uint      `json:"problem_id"`
	Verdict      string    `json:"verdict"`
	JudgedAt     time.Time `json:"judged_at"`
}

// Publisher emits verdict events. Publishing is best effort; a failed
// publish never fails the submission it describes.
type Publisher interface {
	PublishSubmissionJudged(ctx context.Context, event SubmissionJudged)
}

// NATSPublisher publishes verdict events on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher constructs a publisher. A nil connection yields a
// publisher that drops events, so callers can wire it unconditionally.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "verdict_publisher").Logger(),
	}
}

// PublishSubmissionJudged emits the event, logging and swallowing failures.
func (p *NATSPublisher) PublishSubmissionJudged(ctx context.Context, event SubmissionJudged) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Uint("submission_id", event.SubmissionID).Msg("failed to encode verdict event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Uint("submission_id", event.SubmissionID).Msg("failed to publish verdict event")
	}
}

// Nop is a Publisher that discards every event.
type Nop struct{}

// PublishSubmissionJudged implements Publisher.
func (Nop) PublishSubmissionJudged(context.Context, SubmissionJudged) {}
