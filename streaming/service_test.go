package streaming

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kinocast-cli/kinocast/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeProvider is a call-counting StreamProvider double.
type fakeProvider struct {
	name  string
	page  PageRef
	err   error
	calls atomic.Int32
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FindStreamPage(_ context.Context, _ TitleQuery) (PageRef, error) {
	p.calls.Add(1)
	if p.err != nil {
		return PageRef{}, p.err
	}
	return p.page, nil
}

// fakeResolver is a call-counting StreamResolver double.
type fakeResolver struct {
	name    string
	pattern string
	url     string
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (r *fakeResolver) Name() string { return r.name }

func (r *fakeResolver) CanHandle(url string) bool {
	return r.pattern == "" || containsHost(url, r.pattern)
}

func (r *fakeResolver) Resolve(_ context.Context, _ string) (string, error) {
	r.calls.Add(1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.err != nil {
		return "", r.err
	}
	return r.url, nil
}

func containsHost(url, pattern string) bool {
	for i := 0; i+len(pattern) <= len(url); i++ {
		if url[i:i+len(pattern)] == pattern {
			return true
		}
	}
	return false
}

func TestServiceResolve(t *testing.T) {
	Convey("Service.Resolve", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()
		ctx := context.Background()

		Convey("Happy path resolves through provider and resolver", func() {
			registry := NewRegistry()
			registry.AddProvider(&fakeProvider{name: "alpha", page: PageRef{Provider: "alpha", URL: "https://voe.sx/e/abc"}})
			resolver := &fakeResolver{name: "voe", pattern: "voe.sx", url: "https://cdn.example/master.m3u8"}
			registry.AddResolver(resolver)

			url, err := NewService(registry).Resolve(ctx, TitleQuery{Title: "Dune"})
			So(err, ShouldBeNil)
			So(url, ShouldEqual, "https://cdn.example/master.m3u8")
			So(resolver.calls.Load(), ShouldEqual, 1)
		})

		Convey("Single-flight: concurrent identical requests share one resolution", func() {
			registry := NewRegistry()
			registry.AddProvider(&fakeProvider{name: "alpha", page: PageRef{Provider: "alpha", URL: "https://voe.sx/e/abc"}})
			resolver := &fakeResolver{name: "voe", pattern: "voe.sx", url: "https://cdn.example/master.m3u8", delay: 50 * time.Millisecond}
			registry.AddResolver(resolver)
			service := NewService(registry)

			const waiters = 8
			var wg sync.WaitGroup
			results := make([]string, waiters)
			errs := make([]error, waiters)

			for i := 0; i < waiters; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = service.Resolve(ctx, TitleQuery{Title: "Dune"})
				}(i)
			}
			wg.Wait()

			So(resolver.calls.Load(), ShouldEqual, 1)
			for i := 0; i < waiters; i++ {
				So(errs[i], ShouldBeNil)
				So(results[i], ShouldEqual, "https://cdn.example/master.m3u8")
			}
		})

		Convey("Cache: a live entry short-circuits providers entirely", func() {
			provider := &fakeProvider{name: "alpha", page: PageRef{Provider: "alpha", URL: "https://voe.sx/e/abc"}}
			registry := NewRegistry()
			registry.AddProvider(provider)
			registry.AddResolver(&fakeResolver{name: "voe", pattern: "voe.sx", url: "https://cdn.example/master.m3u8"})
			service := NewService(registry)

			_, err := service.Resolve(ctx, TitleQuery{Title: "Dune"})
			So(err, ShouldBeNil)
			_, err = service.Resolve(ctx, TitleQuery{Title: "Dune"})
			So(err, ShouldBeNil)

			So(provider.calls.Load(), ShouldEqual, 1)
		})

		Convey("Cache: an expired entry triggers fresh resolution", func() {
			provider := &fakeProvider{name: "alpha", page: PageRef{Provider: "alpha", URL: "https://voe.sx/e/abc"}}
			registry := NewRegistry()
			registry.AddProvider(provider)
			registry.AddResolver(&fakeResolver{name: "voe", pattern: "voe.sx", url: "https://cdn.example/master.m3u8"})
			service := NewService(registry)

			_, err := service.Resolve(ctx, TitleQuery{Title: "Dune"})
			So(err, ShouldBeNil)

			// Age the entry past any TTL.
			service.mu.Lock()
			for k, entry := range service.cache {
				entry.resolvedAt = time.Now().Add(-24 * time.Hour)
				service.cache[k] = entry
			}
			service.mu.Unlock()

			_, err = service.Resolve(ctx, TitleQuery{Title: "Dune"})
			So(err, ShouldBeNil)
			So(provider.calls.Load(), ShouldEqual, 2)
		})

		Convey("Fallback: provider B is tried after provider A fails", func() {
			failing := &fakeProvider{name: "alpha", err: NotFoundf("nothing on alpha")}
			working := &fakeProvider{name: "beta", page: PageRef{Provider: "beta", URL: "https://voe.sx/e/xyz"}}
			registry := NewRegistry()
			registry.AddProvider(failing)
			registry.AddProvider(working)
			registry.AddResolver(&fakeResolver{name: "voe", pattern: "voe.sx", url: "https://cdn.example/master.m3u8"})

			url, err := NewService(registry).Resolve(ctx, TitleQuery{Title: "Dune"})
			So(err, ShouldBeNil)
			So(url, ShouldEqual, "https://cdn.example/master.m3u8")
			So(failing.calls.Load(), ShouldEqual, 1)
			So(working.calls.Load(), ShouldEqual, 1)
		})

		Convey("Fallback: when all providers fail, the last error surfaces and no resolver runs", func() {
			registry := NewRegistry()
			registry.AddProvider(&fakeProvider{name: "alpha", err: NotFoundf("nothing on alpha")})
			registry.AddProvider(&fakeProvider{name: "beta", err: Networkf("beta unreachable")})
			resolver := &fakeResolver{name: "voe", pattern: "voe.sx", url: "unused"}
			registry.AddResolver(resolver)

			_, err := NewService(registry).Resolve(ctx, TitleQuery{Title: "Dune"})
			So(err, ShouldNotBeNil)
			So(IsNetwork(err), ShouldBeTrue)
			So(resolver.calls.Load(), ShouldEqual, 0)
		})

		Convey("Failures are not cached: the next request retries", func() {
			provider := &fakeProvider{name: "alpha", err: Networkf("down")}
			registry := NewRegistry()
			registry.AddProvider(provider)
			service := NewService(registry)

			_, err := service.Resolve(ctx, TitleQuery{Title: "Dune"})
			So(IsNetwork(err), ShouldBeTrue)
			_, err = service.Resolve(ctx, TitleQuery{Title: "Dune"})
			So(IsNetwork(err), ShouldBeTrue)

			So(provider.calls.Load(), ShouldEqual, 2)
		})

		Convey("A waiter abandoning interest does not cancel the shared flight", func() {
			registry := NewRegistry()
			registry.AddProvider(&fakeProvider{name: "alpha", page: PageRef{Provider: "alpha", URL: "https://voe.sx/e/abc"}})
			resolver := &fakeResolver{name: "voe", pattern: "voe.sx", url: "https://cdn.example/master.m3u8", delay: 80 * time.Millisecond}
			registry.AddResolver(resolver)
			service := NewService(registry)

			impatient, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				_, err := service.Resolve(impatient, TitleQuery{Title: "Dune"})
				done <- err
			}()
			So(<-done, ShouldNotBeNil) // context deadline

			// The flight keeps running; a patient caller still gets the result.
			url, err := service.Resolve(ctx, TitleQuery{Title: "Dune"})
			So(err, ShouldBeNil)
			So(url, ShouldEqual, "https://cdn.example/master.m3u8")
			So(resolver.calls.Load(), ShouldEqual, 1)
		})
	})
}

func TestServiceResolveURL(t *testing.T) {
	Convey("Service.ResolveURL", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()
		ctx := context.Background()

		Convey("Dispatches to the claiming resolver", func() {
			registry := NewRegistry()
			resolver := &fakeResolver{name: "voe", pattern: "voe.sx", url: "https://cdn.example/master.m3u8"}
			registry.AddResolver(resolver)

			url, err := NewService(registry).ResolveURL(ctx, "https://voe.sx/e/abc")
			So(err, ShouldBeNil)
			So(url, ShouldEqual, "https://cdn.example/master.m3u8")
		})

		Convey("NotFound when no resolver claims the URL", func() {
			_, err := NewService(NewRegistry()).ResolveURL(ctx, "https://unknown.host/page")
			So(IsNotFound(err), ShouldBeTrue)
		})
	})
}
