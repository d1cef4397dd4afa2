package shared

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("simulated rand failure") }

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	withTrace := SetTraceID(ctx)
	traceID := GetTraceID(withTrace)
	assert.Len(t, traceID, 32)
	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err)

	assert.Empty(t, GetTraceID(context.WithValue(ctx, TraceIDKey, 123)), "non-string values are ignored")
}

func TestGenerateTraceID_Fallback(t *testing.T) {
	for name, r := range map[string]io.Reader{
		"failing reader": failingReader{},
		"short reader":   strings.NewReader("short"),
	} {
		t.Run(name, func(t *testing.T) {
			id := generateTraceID(r)
			assert.Len(t, id, 32)
			_, err := hex.DecodeString(id)
			assert.NoError(t, err)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr error
		ok      bool
	}{
		{name: "valid", body: `{"title":"a"}`, ok: true},
		{name: "empty", body: ``, wantErr: ErrEmptyBody},
		{name: "unknown field", body: `{"title":"a","x":1}`},
		{name: "trailing data", body: `{"title":"a"}{"title":"b"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), req, &p)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, "a", p.Title)
				return
			}
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestRespondWithList(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

	RespondWithList(rec, req, "ok", []string{}, 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"ok","data":[],"count":0}`, rec.Body.String())
}

func TestRespondWithErrorAndLog_HidesError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req = req.WithContext(SetTraceID(req.Context()))

	RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "Failed",
		errors.New("postgres://admin:secret@db:5432/kanban unreachable"),
		WithValidStatuses([]string{"todo"}))

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Failed", env.Message)
	assert.Equal(t, []string{"todo"}, env.ValidStatuses)
	assert.Equal(t, GetTraceID(req.Context()), env.TraceID)
	assert.NotContains(t, rec.Body.String(), "secret")
}
