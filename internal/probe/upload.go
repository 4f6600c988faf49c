package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// zeroChunk is the read-only payload source for generated upload chunks
var zeroChunk = make([]byte, UploadChunkSize)

// Uploader measures upload throughput by streaming generated request bodies
type Uploader struct {
	client *http.Client
}

// NewUploader creates an upload probe; a nil client gets a default one
func NewUploader(client *http.Client) *Uploader {
	return &Uploader{client: defaultClient(client)}
}

// Direction returns "upload"
func (u *Uploader) Direction() Direction {
	return DirectionUpload
}

// Run launches the parallel POST streams and returns the reduced rate
func (u *Uploader) Run(ctx context.Context, opts Options) (Result, error) {
	return runStreams(ctx, DirectionUpload, opts, u.stream)
}

// stream posts one chunked body that ends when the probe window closes
func (u *Uploader) stream(ctx context.Context, index int, s *session) error {
	body := &generator{session: s}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, CacheBust(s.url, Token(index)), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return checkStatus(resp)
}

// generator is a pull-based body: every new 64KiB chunk is accounted the
// moment the transport asks for it, and EOF is returned once the window closes
type generator struct {
	session *session
	pending int
}

// Read implements io.Reader
func (g *generator) Read(p []byte) (int, error) {
	if g.pending == 0 {
		if g.session.expired() {
			return 0, io.EOF
		}
		g.pending = UploadChunkSize
		g.session.observe(UploadChunkSize)
	}

	n := len(p)
	if n > g.pending {
		n = g.pending
	}
	copy(p[:n], zeroChunk[:n])
	g.pending -= n
	return n, nil
}
