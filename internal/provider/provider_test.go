package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	primary := []string{"org", "asn", "org_name", "company"}
	fallback := []string{"connection.isp", "connection.org", "org"}

	tests := []struct {
		name  string
		body  string
		paths []string
		want  Info
	}{
		{"primary org", `{"ip":"203.0.113.7","org":"Example ISP"}`, primary, Info{Name: "Example ISP", IP: "203.0.113.7"}},
		{"primary asn only", `{"ip":"203.0.113.7","asn":"AS64500"}`, primary, Info{Name: "AS64500", IP: "203.0.113.7"}},
		{"fallback nested isp", `{"ip":"198.51.100.1","connection":{"isp":"Fiber Co","org":"Fiber Org"}}`, fallback, Info{Name: "Fiber Co", IP: "198.51.100.1"}},
		{"fallback nested org", `{"ip":"198.51.100.1","connection":{"org":"Fiber Org"}}`, fallback, Info{Name: "Fiber Org", IP: "198.51.100.1"}},
		{"nothing", `{}`, primary, Info{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parse(tt.body, tt.paths); got != tt.want {
				t.Errorf("parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLookupPrimary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ip":"203.0.113.7","org":"Example ISP"}`))
	}))
	defer primary.Close()

	l := New(Options{PrimaryURL: primary.URL, FallbackURL: "http://127.0.0.1:1/", Timeout: time.Second})
	info, err := l.Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if info.Name != "Example ISP" || info.IP != "203.0.113.7" {
		t.Errorf("Lookup() = %+v", info)
	}
}

func TestLookupFallsBack(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"198.51.100.1","connection":{"isp":"Fiber Co"}}`))
	}))
	defer fallback.Close()

	l := New(Options{PrimaryURL: primary.URL, FallbackURL: fallback.URL, Timeout: time.Second})
	info, err := l.Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if info.Name != "Fiber Co" || info.IP != "198.51.100.1" {
		t.Errorf("Lookup() = %+v", info)
	}
}

func TestLookupBothFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer bad.Close()

	l := New(Options{PrimaryURL: bad.URL, FallbackURL: bad.URL, Timeout: time.Second})
	if _, err := l.Lookup(context.Background()); err == nil {
		t.Error("Lookup() error = nil, want error")
	}

	ch := l.Async(context.Background())
	if info, ok := <-ch; ok {
		t.Errorf("Async() yielded %+v, want closed channel", info)
	}
}

func TestAsyncYieldsOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.7","company":"Co"}`))
	}))
	defer server.Close()

	ch := New(Options{PrimaryURL: server.URL, Timeout: time.Second}).Async(context.Background())
	info, ok := <-ch
	if !ok || info.Name != "Co" {
		t.Fatalf("Async() first value = %+v, %v", info, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("Async() channel not closed after one value")
	}
}
