package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestNormalizeUserAgent(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"ClauseScope/0.1 (+https://github.com/ppiankov/clausescope)", "ClauseScope"},
		{"curl/8.0", "curl"},
		{"bot", "bot"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeUserAgent(tt.ua); got != tt.want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", tt.ua, got, tt.want)
		}
	}
}

func TestRobotsChecker_Allowed(t *testing.T) {
	var robotsHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			_, _ = fmt.Fprint(w, "User-agent: ClauseScope\nDisallow: /private/\n\nUser-agent: *\nDisallow: /\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "ClauseScope/0.1")
	ctx := context.Background()

	allowed, err := checker.Allowed(ctx, server.URL+"/contracts/lease.html")
	if err != nil || !allowed {
		t.Errorf("Expected public path allowed, got %v (err=%v)", allowed, err)
	}

	allowed, err = checker.Allowed(ctx, server.URL+"/private/lease.html")
	if err != nil || allowed {
		t.Errorf("Expected private path disallowed, got %v (err=%v)", allowed, err)
	}

	if robotsHits.Load() != 1 {
		t.Errorf("Expected robots.txt fetched once, got %d", robotsHits.Load())
	}
}

func TestRobotsChecker_MissingRobotsAllowsAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "ClauseScope/0.1")
	allowed, err := checker.Allowed(context.Background(), server.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("Expected allowed without robots.txt, got %v (err=%v)", allowed, err)
	}
}

func TestRobotsChecker_InvalidURL(t *testing.T) {
	checker := NewRobotsChecker(http.DefaultClient, "ClauseScope/0.1")
	if _, err := checker.Allowed(context.Background(), "not a url"); err == nil {
		t.Error("Expected error for URL without host")
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:3128", "", "localhost,.corp.example")

	tests := []struct {
		target string
		want   string
	}{
		{"http://example.com/lease", "http://proxy.internal:3128"},
		{"https://example.com/lease", "http://proxy.internal:3128"},
		{"http://docs.corp.example/lease", ""},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, tt.target, nil)
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s) error: %v", tt.target, err)
		}
		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.want {
			t.Errorf("proxy(%s) = %q, want %q", tt.target, gotStr, tt.want)
		}
	}
}

func TestNewProxyFunc_HTTPSOverride(t *testing.T) {
	proxy := NewProxyFunc("http://plain:3128", "http://secure:3129", "")

	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	got, err := proxy(req)
	if err != nil || got == nil || got.Host != "secure:3129" {
		t.Errorf("Expected HTTPS proxy, got %v (err=%v)", got, err)
	}
}
