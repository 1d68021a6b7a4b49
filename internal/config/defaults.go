// Package config - defaults.go centralizes magic numbers and default values.
//
// DESIGN: All default values that appear in multiple places should be defined here.
// This makes configuration more maintainable and auditable.
package config

import "time"

// =============================================================================
// SERVER
// =============================================================================

// DefaultPort is the HTTP listen port.
const DefaultPort = 3000

// DefaultServerReadTimeout bounds reading a request.
const DefaultServerReadTimeout = 15 * time.Second

// DefaultServerWriteTimeout bounds writing a response.
const DefaultServerWriteTimeout = 30 * time.Second

// DefaultShutdownTimeout is how long Shutdown waits for in-flight requests.
const DefaultShutdownTimeout = 10 * time.Second

// =============================================================================
// RATE LIMITING
// =============================================================================

// DefaultRateLimit is requests per second per IP.
const DefaultRateLimit = 100

// MaxRateLimitBuckets prevents memory exhaustion from too many IP buckets.
const MaxRateLimitBuckets = 10000

// DefaultCleanupInterval is the frequency for background cleanup goroutines.
const DefaultCleanupInterval = 5 * time.Minute

// DefaultStaleTimeout is when entries are considered stale for cleanup.
const DefaultStaleTimeout = 10 * time.Minute

// =============================================================================
// HTTP AND NETWORKING
// =============================================================================

// MaxRequestBodySize is the maximum allowed request body (1MB).
const MaxRequestBodySize = 1 * 1024 * 1024

// DefaultClientTimeout is the cost API client's request timeout.
const DefaultClientTimeout = 10 * time.Second

// DefaultHealthTimeout is the client's health probe timeout.
const DefaultHealthTimeout = 5 * time.Second

// DefaultBaseURL is where the client looks for a local server.
const DefaultBaseURL = "http://localhost:3000"

// =============================================================================
// PRICING
// =============================================================================

// DefaultPriceCurrency labels amounts in reports.
const DefaultPriceCurrency = "KRW"
