package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-queue/internal/api/shared"
	"github.com/phrazzld/scry-queue/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	incoming := uuid.NewString()

	tests := []struct {
		name      string
		header    string
		wantReuse bool
	}{
		{name: "generates trace id", header: ""},
		{name: "reuses caller trace id", header: incoming, wantReuse: true},
		{name: "replaces malformed trace id", header: "<script>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, log := logger.NewCapture()

			var seenTraceID string
			var hasLogger bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenTraceID = shared.GetTraceID(r.Context())
				_, hasLogger = logger.FromContext(r.Context())
				w.WriteHeader(http.StatusTeapot)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/queue", nil)
			if tt.header != "" {
				req.Header.Set(shared.TraceIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			NewTraceMiddleware(log)(next).ServeHTTP(w, req)

			require.NotEmpty(t, seenTraceID)
			_, err := uuid.Parse(seenTraceID)
			assert.NoError(t, err)
			assert.True(t, hasLogger)
			assert.Equal(t, seenTraceID, w.Header().Get(shared.TraceIDHeader))
			if tt.wantReuse {
				assert.Equal(t, incoming, seenTraceID)
			}

			entries, err := buf.Entries()
			require.NoError(t, err)
			require.NotEmpty(t, entries)
			last := entries[len(entries)-1]
			assert.Equal(t, "request completed", last["msg"])
			assert.Equal(t, seenTraceID, last["trace_id"])
			assert.Equal(t, float64(http.StatusTeapot), last["status"])
		})
	}
}
