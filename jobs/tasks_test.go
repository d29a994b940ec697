package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSendEmailTask(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{
		To:      "customer@meridian.local",
		Subject: "Appointment confirmed",
		Body:    "See you soon.",
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())

	var payload SendEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "customer@meridian.local", payload.To)
}

func TestHandleSendEmailTask(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{To: "a@b.c", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.NoError(t, HandleSendEmailTask(context.Background(), task))
}

func TestHandleSendEmailTaskBadPayloadSkipsRetry(t *testing.T) {
	task := asynq.NewTask(TaskTypeSendEmail, []byte(`not json`))
	err := HandleSendEmailTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewRefreshRoleCachesTask(t *testing.T) {
	task := NewRefreshRoleCachesTask()
	assert.Equal(t, TaskTypeRefreshRoleCaches, task.Type())
	assert.Empty(t, task.Payload())
}

type stubRefresher struct {
	calls int
	err   error
}

func (s *stubRefresher) RefreshAllRoleCaches(ctx context.Context) error {
	s.calls++
	return s.err
}

func TestRefreshRoleCachesHandler(t *testing.T) {
	refresher := &stubRefresher{}
	handler := NewRefreshRoleCachesHandler(refresher)

	require.NoError(t, handler(context.Background(), NewRefreshRoleCachesTask()))
	assert.Equal(t, 1, refresher.calls)

	refresher.err = errors.New("store offline")
	assert.Error(t, handler(context.Background(), NewRefreshRoleCachesTask()))
}
