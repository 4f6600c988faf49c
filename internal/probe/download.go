package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Downloader measures download throughput by reading response bodies
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a download probe; a nil client gets a default one
func NewDownloader(client *http.Client) *Downloader {
	return &Downloader{client: defaultClient(client)}
}

// Direction returns "download"
func (d *Downloader) Direction() Direction {
	return DirectionDownload
}

// Run launches the parallel GET streams and returns the reduced rate
func (d *Downloader) Run(ctx context.Context, opts Options) (Result, error) {
	return runStreams(ctx, DirectionDownload, opts, d.stream)
}

// stream reads one cache-busted response body until EOF or the deadline
func (d *Downloader) stream(ctx context.Context, index int, s *session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, CacheBust(s.url, Token(index)), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	buf := make([]byte, readChunkSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			s.observe(n)
			if s.expired() {
				// Abort the rest of the body; the window is closed
				cancel()
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
