package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestAndTraceKeepsIncomingIDs(t *testing.T) {
	var gotReq, gotTrace string
	h := WithRequestAndTrace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = RequestIDFromContext(r.Context())
		gotTrace = TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/topics", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if gotReq != "req-1" {
		t.Fatalf("expected request id req-1, got %q", gotReq)
	}
	if gotTrace == "" {
		t.Fatalf("expected a generated trace id")
	}
	if rec.Header().Get("X-Request-ID") != "req-1" || rec.Header().Get("X-Trace-ID") != gotTrace {
		t.Fatalf("ids not echoed: %v", rec.Header())
	}
}
