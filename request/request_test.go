package request

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := Do(http.MethodPost, server.URL, WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestWithTimeoutExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := Do(http.MethodPost, server.URL, WithTimeout(50*time.Millisecond))
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestMethodIsHonoured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := Do(http.MethodGet, server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
}

func TestWithBody(t *testing.T) {
	expectedBody := `{"message": "hello"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != expectedBody {
			t.Errorf("expected body '%s', got '%s'", expectedBody, string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := Do(http.MethodPost, server.URL, WithBody(strings.NewReader(expectedBody)))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
}

func TestWithHeader(t *testing.T) {
	expectedKey := "X-Custom-Header"
	expectedValue := "test-value"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(expectedKey) != expectedValue {
			t.Errorf("expected header '%s' = '%s', got '%s'", expectedKey, expectedValue, r.Header.Get(expectedKey))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := Do(http.MethodPost, server.URL, WithHeader(expectedKey, expectedValue))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
}

func TestWithHeaders(t *testing.T) {
	expectedHeaders := map[string]string{
		"X-Header-One": "value1",
		"X-Header-Two": "value2",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range expectedHeaders {
			if r.Header.Get(k) != v {
				t.Errorf("expected header '%s' = '%s', got '%s'", k, v, r.Header.Get(k))
			}
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := Do(http.MethodPost, server.URL, WithHeaders(expectedHeaders))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
}

func TestWithContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(http.MethodPost, server.URL, WithContext(ctx))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWithUpdateCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "SID", Value: "abc123", Path: "/"})
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}

	resp, err := Do(http.MethodPost, server.URL, WithCookieJar(jar), WithUpdateCookies())
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	cookies := jar.Cookies(req.URL)
	if len(cookies) != 1 || cookies[0].Value != "abc123" {
		t.Errorf("expected SID cookie in jar, got %v", cookies)
	}
}

func TestWithPreRequestHookAborts(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	hookErr := errors.New("not ready")
	_, err := Do(http.MethodPost, server.URL, WithPreRequestHook(func() error { return hookErr }))
	if !errors.Is(err, hookErr) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if called {
		t.Error("server should not be reached when the hook fails")
	}
}

func TestWithRateLimiterCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	limiter := ParseRateLimit("1/minute")
	if !limiter.Allow() {
		t.Fatal("first token should be available")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(http.MethodPost, server.URL, WithContext(ctx), WithRateLimiter(limiter))
	if err == nil || !strings.Contains(err.Error(), "rate limiter wait") {
		t.Fatalf("expected rate limiter error, got %v", err)
	}
}

func TestParseRateLimit(t *testing.T) {
	tests := []struct {
		in    string
		isNil bool
		limit float64
	}{
		{"", true, 0},
		{"garbage", true, 0},
		{"0/second", true, 0},
		{"5/hour", true, 0},
		{"10/second", false, 10},
		{"120/minute", false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l := ParseRateLimit(tt.in)
			if tt.isNil {
				if l != nil {
					t.Errorf("expected nil limiter for %q", tt.in)
				}
				return
			}
			if l == nil {
				t.Fatalf("expected limiter for %q", tt.in)
			}
			if float64(l.Limit()) != tt.limit {
				t.Errorf("expected limit %v, got %v", tt.limit, l.Limit())
			}
		})
	}
}
