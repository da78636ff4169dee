// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// AppName is used for the binary name, the config directory and the User-Agent.
const AppName = "face-compare"

// Transport constants
const (
	// DefaultAPIURL is the comparison service address used when none is configured
	DefaultAPIURL = "http://localhost:8000"

	// DefaultRequestTimeout bounds every outbound call, photo uploads included
	DefaultRequestTimeout = 60 * time.Second

	// CaptureFileMode is the permission of captured API responses
	CaptureFileMode = 0600
)

// Session identity constants
const (
	// SessionKey is the durable key holding the anonymous session token
	SessionKey = "face_session_id"

	// SessionFileName is the default file store name under the config dir
	SessionFileName = "session.json"

	// SessionDBName is the default sqlite store name under the config dir
	SessionDBName = "session.db"

	// SessionRedisPrefix prefixes every redis key written by the redis store
	SessionRedisPrefix = "face-compare:"
)

// Session store types
const (
	SessionStoreFile   = "file"
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
	SessionStoreSQLite = "sqlite"
)

// Polling constants. The core issues single status queries; these drive the
// caller-side wait loop.
const (
	// DefaultPollInterval is the delay before the first repeated status query
	DefaultPollInterval = 2 * time.Second

	// DefaultPollMaxInterval caps the delay while progress is unchanged
	DefaultPollMaxInterval = 10 * time.Second

	// DefaultPollMaxErrors is the number of consecutive timeouts or network
	// failures tolerated before waiting gives up
	DefaultPollMaxErrors = 3

	// PollBackoffFactor grows the delay when a poll reports no progress
	PollBackoffFactor = 1.5
)
