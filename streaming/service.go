package streaming

import (
	"context"
	"sync"
	"time"

	"github.com/kinocast-cli/kinocast/key"
	"github.com/kinocast-cli/kinocast/log"
	"github.com/kinocast-cli/kinocast/query"
	"github.com/spf13/viper"
)

// Service coordinates resolution: it runs the provider fallback chain,
// dispatches to the matching resolver, deduplicates concurrent identical
// requests and caches successful results with a TTL. Failures are never
// cached; the next request for the same key retries from scratch.
type Service struct {
	registry *Registry

	mu       sync.Mutex
	cache    map[string]cacheEntry
	inflight map[string]*flight
}

type cacheEntry struct {
	url        string
	resolvedAt time.Time
}

// flight is the shared record of one resolution in progress. Waiters block
// on done; url and err are written exactly once before done closes.
type flight struct {
	done chan struct{}
	url  string
	err  error
}

func NewService(registry *Registry) *Service {
	return &Service{
		registry: registry,
		cache:    make(map[string]cacheEntry),
		inflight: make(map[string]*flight),
	}
}

// TTL returns the configured lifetime of a cached resolution.
func (s *Service) TTL() time.Duration {
	minutes := viper.GetInt(key.StreamCacheTTL)
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// Resolve turns a title query into a playable stream URL, walking the
// provider chain in registration order and the first matching resolver.
func (s *Service) Resolve(ctx context.Context, q TitleQuery) (string, error) {
	_ = query.Remember(q.Title, 1)

	resolutionKey := "title\x00" + NormalizeTitle(q.String())
	return s.single(ctx, resolutionKey, func(ctx context.Context) (string, error) {
		return s.resolveTitle(ctx, q)
	})
}

// ResolveURL resolves a known stream-page URL directly, skipping provider
// search.
func (s *Service) ResolveURL(ctx context.Context, pageURL string) (string, error) {
	return s.single(ctx, "url\x00"+pageURL, func(ctx context.Context) (string, error) {
		resolver, ok := s.registry.ResolverFor(pageURL)
		if !ok {
			return "", NotFoundf("no resolver claims %s", pageURL)
		}
		return resolver.Resolve(ctx, pageURL)
	})
}

// single enforces the per-key state machine: a live cached entry returns
// immediately, an in-flight resolution is joined, and otherwise this caller
// becomes the leader. The leader's work runs on a detached context so a
// waiter abandoning interest never cancels a resolution others share.
func (s *Service) single(ctx context.Context, resolutionKey string, work func(context.Context) (string, error)) (string, error) {
	s.mu.Lock()

	if entry, ok := s.cache[resolutionKey]; ok {
		if time.Since(entry.resolvedAt) < s.TTL() {
			s.mu.Unlock()
			log.Debugf("cache hit for %q", resolutionKey)
			return entry.url, nil
		}
		delete(s.cache, resolutionKey)
	}

	if fl, ok := s.inflight[resolutionKey]; ok {
		s.mu.Unlock()
		return s.await(ctx, fl)
	}

	fl := &flight{done: make(chan struct{})}
	s.inflight[resolutionKey] = fl
	s.mu.Unlock()

	go func() {
		url, err := work(context.WithoutCancel(ctx))

		s.mu.Lock()
		if err == nil {
			s.cache[resolutionKey] = cacheEntry{url: url, resolvedAt: time.Now()}
		}
		delete(s.inflight, resolutionKey)
		s.mu.Unlock()

		fl.url, fl.err = url, err
		close(fl.done)
	}()

	return s.await(ctx, fl)
}

// await blocks until the shared flight finishes or the caller abandons
// interest. Abandoning only stops waiting; the flight itself keeps running
// for the remaining waiters.
func (s *Service) await(ctx context.Context, fl *flight) (string, error) {
	select {
	case <-fl.done:
		return fl.url, fl.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// resolveTitle runs the provider fallback chain. Every attempt's error is
// recorded; when all attempts fail the last one is surfaced so no failure is
// silently swallowed.
func (s *Service) resolveTitle(ctx context.Context, q TitleQuery) (string, error) {
	lastErr := NotFoundf("no stream providers registered")

	for _, provider := range s.registry.Providers() {
		page, err := provider.FindStreamPage(ctx, q)
		if err != nil {
			log.Warnf("provider %s failed for %q: %v", provider.Name(), q, err)
			lastErr = err
			continue
		}

		resolver, ok := s.registry.ResolverFor(page.URL)
		if !ok {
			log.Warnf("no resolver claims %s (from %s)", page.URL, page.Provider)
			lastErr = NotFoundf("no resolver claims %s", page.URL)
			continue
		}

		url, err := resolver.Resolve(ctx, page.URL)
		if err != nil {
			log.Warnf("resolver %s failed for %s: %v", resolver.Name(), page.URL, err)
			lastErr = err
			continue
		}

		log.Infof("resolved %q via %s/%s", q, provider.Name(), resolver.Name())
		return url, nil
	}

	return "", lastErr
}
