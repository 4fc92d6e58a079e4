package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"courtmate/backend/internal/observability"
)

const (
	ReportTypeUser    = "user_report"
	ReportTypeMessage = "message_report"

	reportRoutingKey = "moderation.report"
)

// Publisher delivers report events to the admin pipeline.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

type Report struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	ReporterID     string    `json:"reporterId"`
	ReportedUserID string    `json:"reportedUserId,omitempty"`
	MessageID      string    `json:"messageId,omitempty"`
	RoomID         string    `json:"roomId"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (r Report) EventID() string       { return r.ID }
func (r Report) EventType() string     { return r.Type }
func (r Report) OccurredAt() time.Time { return r.CreatedAt }

// MarshalZerologObject logs the report without its free-text reason.
func (r Report) MarshalZerologObject(e *zerolog.Event) {
	e.Str("report_id", r.ID).
		Str("report_type", r.Type).
		Str("reporter_id", r.ReporterID).
		Str("room_id", r.RoomID)
	if r.ReportedUserID != "" {
		e.Str("reported_user_id", r.ReportedUserID)
	}
	if r.MessageID != "" {
		e.Str("message_id", r.MessageID)
	}
}

type ReportUserInput struct {
	ReportedUserID string `json:"reportedUserId"`
	RoomID         string `json:"roomId"`
	Reason         string `json:"reason"`
}

func (in *ReportUserInput) Trim() {
	in.ReportedUserID = strings.TrimSpace(in.ReportedUserID)
	in.RoomID = strings.TrimSpace(in.RoomID)
	in.Reason = strings.TrimSpace(in.Reason)
}

type ReportMessageInput struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
	Reason    string `json:"reason"`
}

func (in *ReportMessageInput) Trim() {
	in.MessageID = strings.TrimSpace(in.MessageID)
	in.RoomID = strings.TrimSpace(in.RoomID)
	in.Reason = strings.TrimSpace(in.Reason)
}

// Reporter forwards user and message reports to administrators.
type Reporter struct {
	pub Publisher
	now func() time.Time
}

func NewReporter(pub Publisher) *Reporter {
	return &Reporter{pub: pub, now: time.Now}
}

func (r *Reporter) ReportUser(ctx context.Context, reporterID string, in ReportUserInput) (*Report, error) {
	in.Trim()
	if reporterID == "" || in.ReportedUserID == "" || in.RoomID == "" || in.Reason == "" {
		return nil, fmt.Errorf("%w: reportedUserId, roomId and reason are required", ErrBadRequest)
	}
	if reporterID == in.ReportedUserID {
		return nil, fmt.Errorf("%w: cannot report yourself", ErrBadRequest)
	}

	return r.publish(ctx, Report{
		Type:           ReportTypeUser,
		ReporterID:     reporterID,
		ReportedUserID: in.ReportedUserID,
		RoomID:         in.RoomID,
		Reason:         in.Reason,
	})
}

func (r *Reporter) ReportMessage(ctx context.Context, reporterID string, in ReportMessageInput) (*Report, error) {
	in.Trim()
	if reporterID == "" || in.MessageID == "" || in.RoomID == "" || in.Reason == "" {
		return nil, fmt.Errorf("%w: messageId, roomId and reason are required", ErrBadRequest)
	}

	return r.publish(ctx, Report{
		Type:       ReportTypeMessage,
		ReporterID: reporterID,
		MessageID:  in.MessageID,
		RoomID:     in.RoomID,
		Reason:     in.Reason,
	})
}

func (r *Reporter) publish(ctx context.Context, rep Report) (*Report, error) {
	rep.ID = uuid.NewString()
	rep.CreatedAt = r.now().UTC()

	logger := observability.LoggerFromContext(ctx)
	if err := r.pub.Publish(ctx, reportRoutingKey, rep); err != nil {
		logger.Error().Err(err).Str("report_type", rep.Type).Str("room_id", rep.RoomID).Msg("report publish failed")
		return nil, fmt.Errorf("failed to submit report: %w", err)
	}
	logger.Info().Str("report_id", rep.ID).Str("report_type", rep.Type).Str("room_id", rep.RoomID).Msg("report submitted")
	return &rep, nil
}
