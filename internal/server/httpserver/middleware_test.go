package httpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/tracklog-go/internal/telemetry/logger"
	"github.com/yndnr/tracklog-go/internal/telemetry/metric"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates ULID when not provided", func(t *testing.T) {
		rec := serve(handler, "/test", "")

		requestID := rec.Header().Get(HeaderRequestID)
		if _, err := ulid.ParseStrict(requestID); err != nil {
			t.Errorf("X-Request-ID %q is not a ULID: %v", requestID, err)
		}
		if seen != requestID {
			t.Errorf("context request ID = %q, header = %q", seen, requestID)
		}
	})

	t.Run("preserves existing request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, "existing-id-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get(HeaderRequestID); got != "existing-id-123" {
			t.Errorf("expected 'existing-id-123', got %s", got)
		}
	})
}

func TestChain(t *testing.T) {
	var order []int
	step := func(n int) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, n)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			order = append(order, 4)
			w.WriteHeader(http.StatusOK)
		}),
		step(1), step(2), step(3),
	)
	serve(handler, "/test", "")

	expected := []int{1, 2, 3, 4}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d", len(expected), len(order))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("expected order[%d] = %d, got %d", i, v, order[i])
		}
	}
}

func TestRateLimit(t *testing.T) {
	t.Run("limits requests from same IP", func(t *testing.T) {
		handler := RateLimit(2, 2)(okHandler())
		testIP := "10.0.0.99:12345"

		for i := 0; i < 2; i++ {
			if rec := serve(handler, "/test", testIP); rec.Code != http.StatusOK {
				t.Errorf("request %d: expected status 200, got %d", i+1, rec.Code)
			}
		}

		rec := serve(handler, "/test", testIP)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected status 429, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Error("missing Retry-After")
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["code"] != "TL-SYS-4290" {
			t.Errorf("code = %q, want TL-SYS-4290", body["code"])
		}
	})

	t.Run("different IPs have separate limits", func(t *testing.T) {
		handler := RateLimit(1, 1)(okHandler())

		if rec := serve(handler, "/test", "192.168.100.1:12345"); rec.Code != http.StatusOK {
			t.Errorf("first IP: expected status 200, got %d", rec.Code)
		}
		if rec := serve(handler, "/test", "192.168.100.2:12345"); rec.Code != http.StatusOK {
			t.Errorf("second IP: expected status 200, got %d", rec.Code)
		}
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		handler := RateLimit(10, 1)(okHandler())
		testIP := "10.0.0.88:12345"

		serve(handler, "/test", testIP)
		if rec := serve(handler, "/test", testIP); rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected status 429, got %d", rec.Code)
		}

		time.Sleep(200 * time.Millisecond)

		if rec := serve(handler, "/test", testIP); rec.Code != http.StatusOK {
			t.Errorf("after refill: expected status 200, got %d", rec.Code)
		}
	})

	t.Run("zero rate disables limiting", func(t *testing.T) {
		handler := RateLimit(0, 0)(okHandler())
		for i := 0; i < 50; i++ {
			if rec := serve(handler, "/test", "10.0.0.1:1"); rec.Code != http.StatusOK {
				t.Fatalf("request %d: status %d", i, rec.Code)
			}
		}
	})
}

func TestRateLimitConcurrency(t *testing.T) {
	handler := RateLimit(100, 100)(okHandler())

	var wg sync.WaitGroup
	var mu sync.Mutex
	successCount, failCount := 0, 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := serve(handler, "/test", "192.168.1.1:12345")

			mu.Lock()
			if rec.Code == http.StatusOK {
				successCount++
			} else {
				failCount++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if successCount == 0 {
		t.Error("expected some successful requests")
	}
	if failCount == 0 {
		t.Error("expected some rate-limited requests")
	}
}

func TestLimiterRegistry_EvictsIdleClients(t *testing.T) {
	now := time.Unix(1_000, 0)
	registry := newLimiterRegistry(1, 1)
	registry.now = func() time.Time { return now }

	registry.get("10.0.0.1")
	registry.get("10.0.0.2")
	if got := registry.size(); got != 2 {
		t.Fatalf("size = %d, want 2", got)
	}

	now = now.Add(limiterIdleTTL / 2)
	registry.get("10.0.0.2")

	now = now.Add(limiterIdleTTL / 2)
	registry.get("10.0.0.3")
	if got := registry.size(); got != 2 {
		t.Fatalf("size after sweep = %d, want 2 (10.0.0.1 evicted)", got)
	}
}

func TestRecover(t *testing.T) {
	log := slog.New(slog.DiscardHandler)

	t.Run("recovers from panic", func(t *testing.T) {
		handler := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("test panic")
		}))

		rec := serve(handler, "/test", "")

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if got := rec.Header().Get("X-Error-Code"); got != "TL-SYS-5000" {
			t.Errorf("X-Error-Code = %q", got)
		}
	})

	t.Run("passes through normal requests", func(t *testing.T) {
		rec := serve(Recover(log)(okHandler()), "/test", "")
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})
}

func TestAudit(t *testing.T) {
	var logBuffer strings.Builder
	log := slog.New(slog.NewTextHandler(&logBuffer, nil))

	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"logs successful requests", http.StatusOK, "request completed"},
		{"logs client errors", http.StatusUnauthorized, "client error"},
		{"logs server errors", http.StatusInternalServerError, "completed with error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logBuffer.Reset()
			handler := Audit(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			serve(handler, "/test", "")

			if out := logBuffer.String(); !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in log, got: %s", tt.want, out)
			}
		})
	}

	t.Run("masks path passwords", func(t *testing.T) {
		logBuffer.Reset()
		serve(Audit(log)(okHandler()), "/location-update/hunter2/u1/1/2", "")

		out := logBuffer.String()
		if strings.Contains(out, "hunter2") {
			t.Fatalf("password leaked into audit log: %s", out)
		}
		if !strings.Contains(out, "/location-update/***/u1/1/2") {
			t.Errorf("expected redacted path, got: %s", out)
		}
	})
}

func TestMetrics_RouteLabel(t *testing.T) {
	reg := metric.NewRegistry()
	mux := http.NewServeMux()
	mux.Handle("GET /location-update/{pwd}/{user_id}/{lat}/{long}", Metrics(reg)(okHandler()))

	serve(mux, "/location-update/secret/u1/1/2", "")

	families, err := reg.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var route string
	for _, mf := range families {
		if mf.GetName() != "tracklog_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "route" {
					route = lp.GetValue()
				}
			}
		}
	}
	if route != "/location-update/{pwd}/{user_id}/{lat}/{long}" {
		t.Fatalf("route label = %q, want the mux pattern without method", route)
	}
}

func TestResolveClientIP(t *testing.T) {
	trusted := []netip.Prefix{
		netip.MustParsePrefix("192.168.1.0/24"),
		netip.MustParsePrefix("10.9.0.1/32"),
	}

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"untrusted peer ignores X-Forwarded-For", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "203.0.113.7:5000", "203.0.113.7"},
		{"untrusted peer ignores X-Real-IP", map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.7:5000", "203.0.113.7"},
		{"trusted peer X-Forwarded-For", map[string]string{"X-Forwarded-For": "10.0.0.1"}, "192.168.1.1:12345", "10.0.0.1"},
		{"skips trusted hops", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.5, 10.9.0.1"}, "192.168.1.1:12345", "10.0.0.5"},
		{"all hops trusted", map[string]string{"X-Forwarded-For": "192.168.1.9, 10.9.0.1"}, "192.168.1.1:12345", "192.168.1.9"},
		{"malformed hop falls back to peer", map[string]string{"X-Forwarded-For": "not-an-ip"}, "192.168.1.1:12345", "192.168.1.1"},
		{"trusted peer X-Real-IP", map[string]string{"X-Real-IP": "10.0.0.1"}, "192.168.1.1:12345", "10.0.0.1"},
		{"RemoteAddr", nil, "192.168.1.1:12345", "192.168.1.1"},
		{"IPv6 RemoteAddr", nil, "[::1]:8080", "::1"},
		{"RemoteAddr without port", nil, "192.168.1.1", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := resolveClientIP(req, trusted); got != tt.want {
				t.Errorf("resolveClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	registry := newLimiterRegistry(1, 1)
	handler := Chain(okHandler(), ClientIP(nil), rateLimit(registry))

	for i := range 5 {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		want := http.StatusTooManyRequests
		if i == 0 {
			want = http.StatusOK
		}
		if rec.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, want)
		}
	}
	if n := registry.size(); n != 1 {
		t.Fatalf("limiters = %d, want 1", n)
	}
}

func TestClientIP_StoredInContext(t *testing.T) {
	var seen string
	handler := ClientIP([]netip.Prefix{netip.MustParsePrefix("127.0.0.1/32")})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = clientIP(r)
		}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "127.0.0.1:9000"
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "198.51.100.4" {
		t.Fatalf("clientIP = %q, want 198.51.100.4", seen)
	}
}

func TestResponseWriter(t *testing.T) {
	t.Run("captures first status code", func(t *testing.T) {
		wrapped := wrapResponseWriter(httptest.NewRecorder())

		wrapped.WriteHeader(http.StatusCreated)
		wrapped.WriteHeader(http.StatusInternalServerError)

		if wrapped.statusCode != http.StatusCreated {
			t.Errorf("expected status 201, got %d", wrapped.statusCode)
		}
	})

	t.Run("defaults to 200", func(t *testing.T) {
		wrapped := wrapResponseWriter(httptest.NewRecorder())
		wrapped.Write([]byte("ok"))

		if wrapped.statusCode != http.StatusOK {
			t.Errorf("expected default status 200, got %d", wrapped.statusCode)
		}
	})

	t.Run("does not double wrap", func(t *testing.T) {
		inner := wrapResponseWriter(httptest.NewRecorder())
		if wrapResponseWriter(inner) != inner {
			t.Error("wrapResponseWriter wrapped an existing responseWriter")
		}
	})
}
