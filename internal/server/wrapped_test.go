package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"royale-wrapped/internal/api"
	"royale-wrapped/internal/server"
	"royale-wrapped/internal/service"
)

type fakeProvider struct {
	result *service.WrappedResult
	err    error
}

func (f *fakeProvider) PlayerWrapped(_ context.Context, tag string, refresh bool) (*service.WrappedResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newMux(provider *fakeProvider) *http.ServeMux {
	srv := server.NewWrappedServer(provider, zerolog.New(io.Discard))
	mux := http.NewServeMux()
	srv.Routes(mux)
	return mux
}

func TestHealth(t *testing.T) {
	mux := newMux(&fakeProvider{})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, rec.Body.String())
}

func TestPlayer_Success(t *testing.T) {
	provider := &fakeProvider{result: &service.WrappedResult{
		ReportID: "abc123",
		Player:   service.PlayerSummary{Tag: "#89G0UCYV", Name: "Player"},
	}}
	mux := newMux(provider)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/player", strings.NewReader(`{"tag": "#89G0UCYV"}`))
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			ReportID string `json:"report_id"`
			Player   struct {
				Name string `json:"name"`
			} `json:"player"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "abc123", body.Data.ReportID)
	assert.Equal(t, "Player", body.Data.Player.Name)
}

func TestPlayer_BadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "not json"},
		{"missing tag", `{}`},
		{"tag too short", `{"tag": "#A"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newMux(&fakeProvider{})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/player", strings.NewReader(tc.body))
			mux.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestPlayer_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid tag", service.ErrInvalidTag, http.StatusBadRequest},
		{"player not found", api.ErrPlayerNotFound, http.StatusNotFound},
		{"rate limited", api.ErrRateLimited, http.StatusTooManyRequests},
		{"forbidden", api.ErrForbidden, http.StatusBadGateway},
		{"unexpected", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newMux(&fakeProvider{err: tc.err})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/player", strings.NewReader(`{"tag": "#89G0UCYV"}`))
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
