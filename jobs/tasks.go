package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeRefreshRoleCaches re-derives every role's denormalized
	// permission cache from the flat role_permissions rows.
	TaskTypeRefreshRoleCaches = "rbac:refresh-caches"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: SMTP delivery lands with the notification service rollout.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// NewRefreshRoleCachesTask constructs the cache refresh task. It carries no
// payload; the handler walks every provisioned role.
func NewRefreshRoleCachesTask() *asynq.Task {
	return asynq.NewTask(TaskTypeRefreshRoleCaches, nil)
}

// CacheRefresher abstracts the rbac seeder for the worker wiring.
type CacheRefresher interface {
	RefreshAllRoleCaches(ctx context.Context) error
}

// NewRefreshRoleCachesHandler builds the handler for cache refresh tasks.
// Manual edits to role_permissions leave the JSON cache stale until the next
// seed; the scheduled refresh keeps the two representations converged.
func NewRefreshRoleCachesHandler(refresher CacheRefresher) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		return refresher.RefreshAllRoleCaches(ctx)
	}
}
