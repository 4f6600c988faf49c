package probe

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Token returns a unique cache-busting token for the i-th request of a batch
func Token(i int) string {
	return fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), i, uuid.NewString())
}

// CacheBust appends the "_" query parameter to rawURL
func CacheBust(rawURL, token string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "_=" + url.QueryEscape(token)
}

// validateURL rejects empty or non-HTTP targets before any stream starts
func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("target url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid target url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid target url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid target url %q: missing host", raw)
	}
	return nil
}
