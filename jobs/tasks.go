package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	jobmetrics "github.com/amexing/amexing-ops/internal/jobs"
)

var payloadJSON = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	if len(payload.To) == 0 {
		return nil, fmt.Errorf("jobs: email %q has no recipients", payload.Subject)
	}
	data, err := payloadJSON.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(5)), nil
}

// EmailJob delivers TaskTypeSendEmail tasks through a Mailer.
type EmailJob struct {
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes one email task. Malformed payloads are not retried.
func (j *EmailJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	var payload SendEmailPayload
	if err := payloadJSON.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger().Error("decode email task", slog.Any("error", err))
		return fmt.Errorf("jobs: decode email: %v: %w", err, asynq.SkipRetry)
	}
	if len(payload.To) == 0 {
		return fmt.Errorf("jobs: email without recipients: %w", asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskTypeSendEmail)
	defer func() { err = tracker.End(err) }()

	if err := j.Mailer.Send(ctx, Message{To: payload.To, Subject: payload.Subject, Body: payload.Body}); err != nil {
		j.logger().Warn("send email", slog.String("subject", payload.Subject), slog.Any("error", err))
		return err
	}
	j.logger().Info("email sent", slog.String("to", strings.Join(payload.To, ",")), slog.String("subject", payload.Subject))
	return nil
}

func (j *EmailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
