package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/atlas-lms/atlas/internal/mail"
	"github.com/atlas-lms/atlas/internal/payments"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCourseUpdate notifies subscribers that a course changed.
	TaskCourseUpdate = "notify:course_update"
	// TaskPaymentSweep expires checkout sessions that were never completed.
	TaskPaymentSweep = "payments:sweep"
)

// staleAfterHours is how long a pending checkout stays open before the
// sweep marks it expired.
const staleAfterHours = 24

// CourseUpdatePayload carries a course-update notification to the worker.
type CourseUpdatePayload struct {
	CourseTitle string   `json:"course_title"`
	Emails      []string `json:"emails"`
}

// NewCourseUpdateTask constructs an Asynq task.
func NewCourseUpdateTask(payload CourseUpdatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCourseUpdate, data), nil
}

// NewPaymentSweepTask constructs the periodic sweep task.
func NewPaymentSweepTask() *asynq.Task {
	return asynq.NewTask(TaskPaymentSweep, nil)
}

// CourseUpdateHandler sends the course-update email to every subscriber.
type CourseUpdateHandler struct {
	sender  mail.Sender
	logger  *slog.Logger
	printer *message.Printer
}

// NewCourseUpdateHandler constructs a CourseUpdateHandler.
func NewCourseUpdateHandler(sender mail.Sender, logger *slog.Logger) *CourseUpdateHandler {
	return &CourseUpdateHandler{
		sender:  sender,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// ProcessTask handles TaskCourseUpdate. A malformed payload is dropped
// rather than retried; delivery errors are retried by the queue. Each
// recipient gets an individual message so one bad address does not hide
// the rest of the batch.
func (h *CourseUpdateHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload CourseUpdatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.Emails) == 0 {
		return nil
	}

	subject := h.printer.Sprintf("Course %q has been updated", payload.CourseTitle)
	body := h.printer.Sprintf(
		"The course %q you are subscribed to has new material. Sign in to see what changed.",
		payload.CourseTitle)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(5)
	for _, email := range payload.Emails {
		g.Go(func() error {
			if err := h.sender.Send(ctx, []string{email}, subject, body); err != nil {
				h.logger.Error("send course update email",
					slog.String("course", payload.CourseTitle),
					slog.String("to", email), slog.Any("error", err))
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	h.logger.Info("course update notification sent",
		slog.String("course", payload.CourseTitle),
		slog.Int("recipients", len(payload.Emails)))
	return nil
}

// PaymentSweepHandler expires stale pending payments on a schedule.
type PaymentSweepHandler struct {
	repo   payments.Repository
	logger *slog.Logger
}

// NewPaymentSweepHandler constructs a PaymentSweepHandler.
func NewPaymentSweepHandler(repo payments.Repository, logger *slog.Logger) *PaymentSweepHandler {
	return &PaymentSweepHandler{repo: repo, logger: logger}
}

// ProcessTask handles TaskPaymentSweep.
func (h *PaymentSweepHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	expired, err := h.repo.ExpireStale(ctx, staleAfterHours)
	if err != nil {
		h.logger.Error("payment sweep", slog.Any("error", err))
		return err
	}
	if expired > 0 {
		h.logger.Info("expired stale payments", slog.Int64("count", expired))
	}
	return nil
}
