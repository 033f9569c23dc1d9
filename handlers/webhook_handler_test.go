package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manoLogAPI/internal/apperrors"
)

var webhookKey = []byte("0123456789abcdef0123456789abcdef")

func webhookSecret() string {
	return "whsec_" + base64.StdEncoding.EncodeToString(webhookKey)
}

func sign(id string, ts time.Time, body []byte) string {
	mac := hmac.New(sha256.New, webhookKey)
	fmt.Fprintf(mac, "%s.%d.", id, ts.Unix())
	mac.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRequest(body []byte, id string, ts time.Time, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("svix-id", id)
	req.Header.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
	req.Header.Set("svix-signature", signature)
	return req
}

func newSignedWebhookHandler(s *testServer) *WebhookHandler {
	h := NewWebhookHandler(s.users, webhookSecret())
	h.now = func() time.Time { return now }
	return h
}

func TestWebhookUserLifecycle(t *testing.T) {
	s := newTestServer(t)
	h := newSignedWebhookHandler(s)
	ctx := context.Background()

	created := []byte(`{"type":"user.created","data":{"id":"user_hook"}}`)
	rr := httptest.NewRecorder()
	h.HandleClerkWebhook(rr, webhookRequest(created, "msg_1", now, sign("msg_1", now, created)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]bool
	decode(t, rr, &resp)
	assert.True(t, resp["success"])

	_, err := s.db.UserIDByClerkID(ctx, "user_hook")
	require.NoError(t, err, "user should be created")

	deleted := []byte(`{"type":"user.deleted","data":{"id":"user_hook"}}`)
	rr = httptest.NewRecorder()
	h.HandleClerkWebhook(rr, webhookRequest(deleted, "msg_2", now, sign("msg_2", now, deleted)))
	require.Equal(t, http.StatusOK, rr.Code)

	_, err = s.db.UserIDByClerkID(ctx, "user_hook")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestWebhookAcceptsAnyListedSignature(t *testing.T) {
	s := newTestServer(t)
	h := newSignedWebhookHandler(s)
	body := []byte(`{"type":"session.created","data":{}}`)

	sigs := "v1,bm90LXRoaXMtb25l " + sign("msg_3", now, body)
	rr := httptest.NewRecorder()
	h.HandleClerkWebhook(rr, webhookRequest(body, "msg_3", now, sigs))
	assert.Equal(t, http.StatusOK, rr.Code, "unhandled events are acknowledged")
}

func TestWebhookRejectsBadDeliveries(t *testing.T) {
	s := newTestServer(t)
	h := newSignedWebhookHandler(s)
	body := []byte(`{"type":"user.created","data":{"id":"user_evil"}}`)
	stale := now.Add(-10 * time.Minute)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"tampered body", webhookRequest(body, "msg_4", now, sign("msg_4", now, []byte(`{}`)))},
		{"wrong message id", webhookRequest(body, "msg_5", now, sign("msg_other", now, body))},
		{"stale timestamp", webhookRequest(body, "msg_6", stale, sign("msg_6", stale, body))},
		{"unknown version", webhookRequest(body, "msg_7", now, "v2"+sign("msg_7", now, body)[2:])},
		{"missing headers", httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(body))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.HandleClerkWebhook(rr, tt.req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}

	_, err := s.db.UserIDByClerkID(context.Background(), "user_evil")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestWebhookWithoutSecret(t *testing.T) {
	s := newTestServer(t)
	h := NewWebhookHandler(s.users, "")

	rr := httptest.NewRecorder()
	h.HandleClerkWebhook(rr, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewBufferString(`{"type":"user.created","data":{"id":"user_dev"}}`)))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.HandleClerkWebhook(rr, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewBufferString(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.HandleClerkWebhook(rr, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewBufferString(`{"type":"user.created","data":{"id":""}}`)))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
