package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/subguard/internal/logger"
)

func TestWebhookPostsJSON(t *testing.T) {
	var got Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, time.Second, logger.Nop())
	n := Notification{ID: "remind_1", Kind: KindReminder, Title: "t", Message: "m"}
	require.NoError(t, wh.Notify(context.Background(), n))
	assert.Equal(t, n, got)
}

func TestWebhookRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, time.Second, logger.Nop())
	err := wh.Notify(context.Background(), Notification{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	wh := NewWebhook(url, 200*time.Millisecond, logger.Nop())
	assert.Error(t, wh.Notify(context.Background(), Notification{ID: "x"}))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()

	require.NoError(t, r.Notify(ctx, Notification{ID: "a", Kind: KindReminder}))
	require.NoError(t, r.Notify(ctx, Notification{ID: "b", Kind: KindTracked}))

	r.FailWith(errors.New("down"))
	assert.Error(t, r.Notify(ctx, Notification{ID: "c", Kind: KindReminder}))
	r.FailWith(nil)

	assert.Len(t, r.Sent(), 2)
	assert.Equal(t, 1, r.Count(KindReminder))
}

func TestLogNeverFails(t *testing.T) {
	assert.NoError(t, NewLog(logger.Nop()).Notify(context.Background(), Notification{ID: "a"}))
}
