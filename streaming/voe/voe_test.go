package voe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kinocast-cli/kinocast/streaming"
	. "github.com/smartystreets/goconvey/convey"
)

// fixturePayload decodes to fixtureStreamURL through the full pipeline.
const fixturePayload = `["DQAkG!!QqLAy@#O3BTkzo1H2Mzf0A~@H81GK1xARuYnUyV%?oIN4oxqDrHuUHUyZsJM2*~nmIComunMUR4Jy15ISgqrQu8MUj8AJpmJKOyq1t1MGH4sSR3IK1xq1uXKKx4Jx84GIgqAJ9XMJ9IAH95pa1zryIYM3WAoSWfJQIpsSx2MK1AEx9fnyqasGAjG3kMFzq9FIcyrIkkHUIMI2L3CSMDsT5KHab7IyO6B2kDsKgXMUyLpTImM3OyomkTM284pR91GGMyAyIoKKt0Iy15KKSCAzcYHKH0Iy1hCUOyq25kMz9qJ2E2JHcqrGgfHa1SF2pmn3OZBHkTMKkMAyg9HIgqoISnKTyIAykiGIgxox18nN=="]`

const fixtureStreamURL = "https://delivery-node-k4x7.voe-network.net/engine/hls2/01/09921/xq5k2v/master.m3u8"

// baitPayload decodes to a test-videos.co.uk decoy URL.
const baitPayload = `["CR1TH!!Kb0pR9TA@#SuDnISYHUf7FIN1HU1oBQujMGEAZ1g1HI~@caEwj0KKAAZ096KU1DrIEgHKk%?dAH8mESgyrJ5kMKuMpIk1HIcaoTqnMT*~j8sTMho3OarKMnM3t7AIk4HQMyo1InMQH0Ezq9JHcarGgfHa1SF2pmn3OZnaWgGT9EpTL0CQIzoRETG2kHE2M3BTkHHHy9J31SI1OcEJ1EsGgMnUt4JzqTCQExoIykITyaJzETCRMDAIO9GmApoIOlCRMErwD1Gmt4pTH0GGIxoIykKUSipSk5HRgqp102G3IMpH95HKOCsGknKJ5ipTq3IQMzo1H2G3ylsJM6IHgapx1TGQyZEzI8JGMosISoKJ1EJykcIGMpo01oMT5AsTt="]`

func payloadPage(payloads ...string) string {
	page := "<html><body>"
	for _, p := range payloads {
		page += `<script type="application/json">` + p + `</script>`
	}
	return page + "</body></html>"
}

func TestDeobfuscate(t *testing.T) {
	Convey("Deobfuscate", t, func() {
		Convey("Round-trips the captured payload to its stream URL", func() {
			url, err := Deobfuscate(fixturePayload)
			So(err, ShouldBeNil)
			So(url, ShouldEqual, fixtureStreamURL)
		})

		Convey("Is deterministic", func() {
			first, err := Deobfuscate(fixturePayload)
			So(err, ShouldBeNil)
			second, err := Deobfuscate(fixturePayload)
			So(err, ShouldBeNil)
			So(second, ShouldEqual, first)
		})

		Convey("Rejects a payload that is not a JSON array", func() {
			_, err := Deobfuscate(`{"not": "an array"}`)
			So(streaming.IsParse(err), ShouldBeTrue)
		})

		Convey("Rejects an empty array", func() {
			_, err := Deobfuscate(`[]`)
			So(streaming.IsParse(err), ShouldBeTrue)
		})

		Convey("Rejects garbage that survives decoding but is not JSON", func() {
			_, err := Deobfuscate(`["completely bogus content"]`)
			So(streaming.IsParse(err), ShouldBeTrue)
		})
	})
}

func TestRedirectHelpers(t *testing.T) {
	Convey("extractRedirect", t, func() {
		Convey("Matches the window.location.href form", func() {
			target, ok := extractRedirect(`<script>window.location.href = 'https://voe.sx/e/abc';</script>`)
			So(ok, ShouldBeTrue)
			So(target, ShouldEqual, "https://voe.sx/e/abc")
		})

		Convey("Matches the bare window.location form", func() {
			target, ok := extractRedirect(`<script>window.location = "/e/abc"</script>`)
			So(ok, ShouldBeTrue)
			So(target, ShouldEqual, "/e/abc")
		})

		Convey("Reports no redirect on a plain page", func() {
			_, ok := extractRedirect(`<html><body>player</body></html>`)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("resolveRedirectURL", t, func() {
		Convey("Protocol-relative targets get https", func() {
			So(resolveRedirectURL("https://voe.sx/e/abc", "//mirror.voe.network/e/abc"),
				ShouldEqual, "https://mirror.voe.network/e/abc")
		})

		Convey("Absolute targets pass through", func() {
			So(resolveRedirectURL("https://voe.sx/e/abc", "https://other.host/e/abc"),
				ShouldEqual, "https://other.host/e/abc")
		})

		Convey("Relative targets resolve against the page", func() {
			So(resolveRedirectURL("https://voe.sx/e/abc", "/launch/xyz"),
				ShouldEqual, "https://voe.sx/launch/xyz")
		})
	})
}

func TestResolver(t *testing.T) {
	Convey("Resolver", t, func() {
		ctx := context.Background()
		resolver := New()

		Convey("Name and CanHandle", func() {
			So(resolver.Name(), ShouldEqual, "voe")
			So(resolver.CanHandle("https://voe.sx/e/abc"), ShouldBeTrue)
			So(resolver.CanHandle("https://mirror.voe.network/e/abc"), ShouldBeTrue)
			So(resolver.CanHandle("https://filmpalast.to/stream/dune"), ShouldBeFalse)
		})

		Convey("Resolves a page carrying an obfuscated payload", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, payloadPage(fixturePayload))
			}))
			defer server.Close()

			url, err := resolver.Resolve(ctx, server.URL)
			So(err, ShouldBeNil)
			So(url, ShouldEqual, fixtureStreamURL)
		})

		Convey("Follows a JavaScript redirect to the payload page", func() {
			mux := http.NewServeMux()
			server := httptest.NewServer(mux)
			defer server.Close()

			mux.HandleFunc("/e/abc", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `<script>window.location.href = '%s/launch/abc';</script>`, server.URL)
			})
			mux.HandleFunc("/launch/abc", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, payloadPage(fixturePayload))
			})

			url, err := resolver.Resolve(ctx, server.URL+"/e/abc")
			So(err, ShouldBeNil)
			So(url, ShouldEqual, fixtureStreamURL)
		})

		Convey("Skips bait payloads in favor of the real one", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, payloadPage(baitPayload, fixturePayload))
			}))
			defer server.Close()

			url, err := resolver.Resolve(ctx, server.URL)
			So(err, ShouldBeNil)
			So(url, ShouldEqual, fixtureStreamURL)
		})

		Convey("NotFound when the page only carries bait", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, payloadPage(baitPayload))
			}))
			defer server.Close()

			_, err := resolver.Resolve(ctx, server.URL)
			So(streaming.IsNotFound(err), ShouldBeTrue)
		})

		Convey("Falls back to a bare media URL when no payload is embedded", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `<video src="https://cdn.example.net/stream/master.m3u8?token=1"></video>`)
			}))
			defer server.Close()

			url, err := resolver.Resolve(ctx, server.URL)
			So(err, ShouldBeNil)
			So(url, ShouldEqual, "https://cdn.example.net/stream/master.m3u8?token=1")
		})

		Convey("NotFound on a page without any stream reference", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `<html><body>nothing here</body></html>`)
			}))
			defer server.Close()

			_, err := resolver.Resolve(ctx, server.URL)
			So(streaming.IsNotFound(err), ShouldBeTrue)
		})

		Convey("ParseError when the only payload refuses to decode", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, payloadPage(`["broken payload"]`))
			}))
			defer server.Close()

			_, err := resolver.Resolve(ctx, server.URL)
			So(streaming.IsParse(err), ShouldBeTrue)
		})

		Convey("Network error on a non-2xx status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "gone", http.StatusNotFound)
			}))
			defer server.Close()

			_, err := resolver.Resolve(ctx, server.URL)
			So(streaming.IsNetwork(err), ShouldBeTrue)
		})

		Convey("Network error when redirects never settle", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `<script>window.location.href = '/e/again';</script>`)
			}))
			defer server.Close()

			_, err := resolver.Resolve(ctx, server.URL)
			So(streaming.IsNetwork(err), ShouldBeTrue)
		})
	})
}
