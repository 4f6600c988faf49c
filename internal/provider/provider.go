package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/wellsgz/linkcheck/internal/metrics"
)

const (
	DefaultPrimaryURL  = "https://ipapi.co/json/"
	DefaultFallbackURL = "https://ipwho.is/"
	defaultTimeout     = 5 * time.Second
)

// Info identifies the client's ISP and public IP; empty fields are absent
type Info struct {
	Name string `json:"name,omitempty"`
	IP   string `json:"ip,omitempty"`
}

// endpoint is one lookup service and the JSON paths that may hold the ISP name
type endpoint struct {
	url       string
	namePaths []string
	label     string
}

// Lookup resolves provider information from a primary service with a fallback
type Lookup struct {
	client    *resty.Client
	endpoints []endpoint
}

// Options configures a Lookup
type Options struct {
	PrimaryURL  string
	FallbackURL string
	Timeout     time.Duration
}

// New creates a Lookup
func New(opts Options) *Lookup {
	if opts.PrimaryURL == "" {
		opts.PrimaryURL = DefaultPrimaryURL
	}
	if opts.FallbackURL == "" {
		opts.FallbackURL = DefaultFallbackURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Cache-Control", "no-store")

	return &Lookup{
		client: client,
		endpoints: []endpoint{
			{url: opts.PrimaryURL, namePaths: []string{"org", "asn", "org_name", "company"}, label: "primary"},
			{url: opts.FallbackURL, namePaths: []string{"connection.isp", "connection.org", "org"}, label: "fallback"},
		},
	}
}

// Lookup tries each endpoint in order and returns the first usable answer
func (l *Lookup) Lookup(ctx context.Context) (Info, error) {
	var errs []error
	for _, ep := range l.endpoints {
		info, err := l.query(ctx, ep)
		if err == nil {
			metrics.RecordProviderLookup(ep.label)
			return info, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", ep.label, err))
		if ctx.Err() != nil {
			break
		}
	}
	metrics.RecordProviderLookup("failed")
	return Info{}, errors.Join(errs...)
}

// Async runs Lookup in the background. The channel yields at most one value
// and is closed when the lookup finishes; a failed lookup yields nothing.
func (l *Lookup) Async(ctx context.Context) <-chan Info {
	ch := make(chan Info, 1)
	go func() {
		defer close(ch)
		info, err := l.Lookup(ctx)
		if err != nil {
			log.Printf("[Provider] Lookup failed: %v", err)
			return
		}
		ch <- info
	}()
	return ch
}

// query fetches one endpoint and extracts the provider fields
func (l *Lookup) query(ctx context.Context, ep endpoint) (Info, error) {
	resp, err := l.client.R().SetContext(ctx).Get(ep.url)
	if err != nil {
		return Info{}, err
	}
	if !resp.IsSuccess() {
		return Info{}, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	body := resp.String()
	if !gjson.Valid(body) {
		return Info{}, fmt.Errorf("response is not valid JSON")
	}
	return parse(body, ep.namePaths), nil
}

// parse picks the first non-empty name path plus the ip field
func parse(body string, namePaths []string) Info {
	info := Info{IP: gjson.Get(body, "ip").String()}
	for _, path := range namePaths {
		if name := gjson.Get(body, path).String(); name != "" {
			info.Name = name
			break
		}
	}
	return info
}
