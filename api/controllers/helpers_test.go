package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/graingrove-backend/api/middleware"
	"github.com/angelmondragon/graingrove-backend/internal/notices"
)

type envelope struct {
	Data    json.RawMessage  `json:"data"`
	Error   *apiError        `json:"error"`
	Notices []notices.Notice `json:"notices"`
}

type apiError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func newRequest(method, target, body, sessionID string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := notices.WithCollector(req.Context(), notices.NewCollector())
	if sessionID != "" {
		ctx = middleware.WithSessionID(ctx, sessionID)
	}
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}
