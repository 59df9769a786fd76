// Package streaming implements stream page discovery and playable URL resolution across external providers.
//
// Data flows one direction: a title query is handed to a Provider, which
// locates a stream page on its site; the matching Resolver then extracts the
// actual media URL from that page. The Service wraps the whole chain with
// caching and request deduplication so the player component only ever sees a
// final URL or a typed error.
package streaming

import (
	"context"
	"fmt"
)

// TitleQuery identifies a media title to search for. Year is optional and
// zero when unspecified; it only breaks ties between equally similar
// candidates.
type TitleQuery struct {
	Title string
	Year  int
}

func (q TitleQuery) String() string {
	if q.Year > 0 {
		return fmt.Sprintf("%s (%d)", q.Title, q.Year)
	}
	return q.Title
}

// PageRef points at a stream page discovered by a provider. It carries the
// provider name so failures can be attributed during fallback.
type PageRef struct {
	Provider string
	URL      string
}

// Provider searches one external site's catalog for a title and returns a
// candidate stream-page URL.
type Provider interface {
	// Name returns the stable identifier used for registration order and logging.
	Name() string

	// FindStreamPage searches the provider's catalog for the queried title.
	FindStreamPage(ctx context.Context, query TitleQuery) (PageRef, error)
}

// Resolver extracts a final playable URL from a stream page belonging to one
// external hoster.
type Resolver interface {
	// Name returns the stable identifier for the hoster.
	Name() string

	// CanHandle reports whether the URL belongs to this resolver's hoster.
	CanHandle(url string) bool

	// Resolve fetches the page and extracts the playable media URL.
	Resolve(ctx context.Context, url string) (string, error)
}
