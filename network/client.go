// Package network provides pre-configured, optimized HTTP clients for concurrent provider communication.
package network

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/kinocast-cli/kinocast/constant"
	"github.com/kinocast-cli/kinocast/key"
	"github.com/spf13/viper"
)

// Client is the singleton HTTP client shared across the application for efficient resource utilization.
// It is configured with increased concurrency limits and reasonable timeouts tailored for scraping workflows.
var Client = &http.Client{
	Transport: newTransport(),
}

// NoRedirect is a variant of Client that never follows HTTP redirects automatically.
// Hoster pages redirect through JavaScript rather than Location headers, so
// resolvers inspect each hop themselves.
var NoRedirect = &http.Client{
	Transport: newTransport(),
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// newTransport initializes a tuned http.Transport with optimized pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}

// Timeout returns the configured per-fetch deadline for provider requests.
func Timeout() time.Duration {
	seconds := viper.GetInt(key.NetworkTimeout)
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

// Get issues a browser-like GET request through the supplied client and returns the
// response body together with the HTTP status code. The configured per-fetch
// timeout is applied on top of the caller's context.
func Get(ctx context.Context, client *http.Client, url string, headers map[string]string) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}

	return string(body), resp.StatusCode, nil
}
