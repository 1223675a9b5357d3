package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracing_HonorsValidRequestID(t *testing.T) {
	inbound := uuid.New().String()
	var seen string

	h := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", inbound)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, inbound, seen)
	assert.Equal(t, inbound, rec.Header().Get("X-Request-ID"))
}

func TestTracing_ReplacesInvalidRequestID(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
	}{
		{"missing", ""},
		{"not a uuid", "trace-me-please"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = TraceIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set("X-Request-ID", tt.inbound)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEqual(t, tt.inbound, seen)
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
			assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
		})
	}
}
