package obs

import (
	"net/http"
	"time"
)

// ResponseRecorder tracks response status and bytes written.
type ResponseRecorder struct {
	http.ResponseWriter
	statusCode  int
	respBytes   int64
	wroteHeader bool
}

type responseRecorderWithFlusher struct {
	*ResponseRecorder
}

func (r *ResponseRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.statusCode = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *ResponseRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.statusCode = http.StatusOK
		r.wroteHeader = true
	}
	n, err := r.ResponseWriter.Write(p)
	r.respBytes += int64(n)
	return n, err
}

func (r *ResponseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *responseRecorderWithFlusher) Flush() {
	r.ResponseWriter.(http.Flusher).Flush()
}

func (r *ResponseRecorder) StatusCode() int {
	return r.statusCode
}

func (r *ResponseRecorder) RespBytes() int64 {
	return r.respBytes
}

// NewResponseRecorder wraps a response writer while preserving http.Flusher.
func NewResponseRecorder(w http.ResponseWriter) http.ResponseWriter {
	rec := &ResponseRecorder{ResponseWriter: w}
	if _, ok := w.(http.Flusher); ok {
		return &responseRecorderWithFlusher{ResponseRecorder: rec}
	}
	return rec
}

// Middleware assigns a request id, logs request completion with status,
// bytes, and duration, and stores correlation fields in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := WithCorrelation(r.Context(), Correlation{RequestID: newRequestID()})
		rec := NewResponseRecorder(w)

		next.ServeHTTP(rec, r.WithContext(ctx))

		var status int
		var bytes int64
		switch typed := rec.(type) {
		case *ResponseRecorder:
			status = typed.StatusCode()
			bytes = typed.RespBytes()
		case *responseRecorderWithFlusher:
			status = typed.StatusCode()
			bytes = typed.RespBytes()
		}
		From(ctx).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"resp_bytes", bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
