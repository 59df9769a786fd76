// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Provider Selection - these keys manage the registration order and priority of stream providers.
const (
	ProvidersDefault = "providers.default"
)

// Title Matching - these keys govern how provider search listings are matched against a title query.
const (
	MatchSimilarityThreshold = "match.similarity_threshold"
)

// Stream Resolution - these keys configure the resolution coordinator's caching behavior.
const (
	StreamCacheTTL = "stream.cache_ttl"
)

// Network Transport - these keys bound the HTTP requests issued to provider sites.
const (
	NetworkTimeout      = "network.timeout"
	NetworkMaxRedirects = "network.max_redirects"
)

// Search Interaction - these keys define the UX parameters for search discovery.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern the terminal front-end behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
