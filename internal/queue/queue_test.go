package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishing(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	msg, err := newPublishing(UserRegisteredEvent{UserID: "u1", Username: "ana"}, now)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, now.UTC(), msg.Timestamp)

	var back UserRegisteredEvent
	require.NoError(t, json.Unmarshal(msg.Body, &back))
	assert.Equal(t, "ana", back.Username)

	_, err = newPublishing(make(chan int), now)
	require.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	require.NoError(t, p.Publish(context.Background(), UserRegisteredQueue, nil))
}

func TestHandleMessage_AppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	reg, _ := json.Marshal(UserRegisteredEvent{
		UserID: "u1", Username: "ana", Email: "ana@x.io", Role: "user", RegisteredAt: "2025-03-01T12:00:00Z",
	})
	prefs, _ := json.Marshal(PreferencesChangedEvent{
		UserID: "u1", Action: ActionUpdated, Preferences: []string{"Arte", "Gaming"}, ChangedAt: "2025-03-01T12:01:00Z",
	})
	require.NoError(t, handleMessage(dir, UserRegisteredQueue, reg))
	require.NoError(t, handleMessage(dir, PreferencesChangedQueue, prefs))

	b, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	assert.Equal(t,
		"[2025-03-01T12:00:00Z] User registered | user_id=u1 | username=\"ana\" | email=\"ana@x.io\" | role=user\n"+
			"[2025-03-01T12:01:00Z] Preferences updated | user_id=u1 | preferences=[Arte,Gaming]\n",
		string(b))
}

func TestHandleMessage_Rejects(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, handleMessage(dir, UserRegisteredQueue, []byte("{")))
	require.Error(t, handleMessage(dir, PreferencesChangedQueue, []byte(`{"action":"created"}`)))
	require.Error(t, handleMessage(dir, "booking.confirmed", []byte(`{}`)))

	_, err := os.Stat(filepath.Join(dir, "audit.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Hour))
	assert.True(t, sleep(context.Background(), time.Millisecond))
}
