package mid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrange/core/logger"
	"github.com/kilianp07/evrange/core/monitoring"
)

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(ok(), tag("a"), nil, tag("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b"}, order)
}

type recordingLogger struct {
	logger.NopLogger
	fields []map[string]any
}

func (l *recordingLogger) Debugw(_ string, f map[string]any) { l.fields = append(l.fields, f) }

func TestLogger_CapturesStatus(t *testing.T) {
	log := &recordingLogger{}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}), Logger(log))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))
	require.Len(t, log.fields, 1)
	assert.Equal(t, http.StatusTeapot, log.fields[0]["status"])
	assert.Equal(t, "/x", log.fields[0]["path"])
}

func TestRecover(t *testing.T) {
	mon := &monitoring.MemoryMonitor{}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Recover(logger.NopLogger{}, mon))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, []any{"boom"}, mon.Panics())
}

func TestRateLimit(t *testing.T) {
	h := Chain(ok(), RateLimit(0.001, 2))
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	assert.Nil(t, RateLimit(0, 10))
}

func TestOTel_PassesThrough(t *testing.T) {
	rr := httptest.NewRecorder()
	Chain(ok(), OTel("evrange")).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "ok"))
}
