package streaming

import "github.com/samber/lo"

// Registry holds providers and resolvers in registration order. Order is the
// fallback priority: providers are tried first to last, and the first
// resolver whose CanHandle claims a URL wins.
type Registry struct {
	providers []Provider
	resolvers []Resolver
}

func NewRegistry() *Registry {
	return &Registry{}
}

// AddProvider appends a provider to the fallback chain.
func (r *Registry) AddProvider(p Provider) {
	r.providers = append(r.providers, p)
}

// AddResolver appends a resolver to the dispatch chain.
func (r *Registry) AddResolver(res Resolver) {
	r.resolvers = append(r.resolvers, res)
}

// Providers returns the registered providers in fallback order.
func (r *Registry) Providers() []Provider {
	return r.providers
}

// Resolvers returns the registered resolvers in dispatch order.
func (r *Registry) Resolvers() []Resolver {
	return r.resolvers
}

// Provider finds a registered provider by name.
func (r *Registry) Provider(name string) (Provider, bool) {
	return lo.Find(r.providers, func(p Provider) bool {
		return p.Name() == name
	})
}

// ResolverFor returns the first resolver claiming the URL.
func (r *Registry) ResolverFor(url string) (Resolver, bool) {
	return lo.Find(r.resolvers, func(res Resolver) bool {
		return res.CanHandle(url)
	})
}

// ProviderNames lists registered provider identifiers in fallback order.
func (r *Registry) ProviderNames() []string {
	return lo.Map(r.providers, func(p Provider, _ int) string {
		return p.Name()
	})
}

// ResolverNames lists registered resolver identifiers in dispatch order.
func (r *Registry) ResolverNames() []string {
	return lo.Map(r.resolvers, func(res Resolver, _ int) string {
		return res.Name()
	})
}
