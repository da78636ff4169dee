package constants

import "time"

// Stub server constants
const (
	// StubMaxUploadSize is the largest photo the stub server accepts
	StubMaxUploadSize = 10 << 20

	// StubTopMatches is the number of celebrities returned per comparison
	StubTopMatches = 3

	// StubPendingFor is how long a new stub job stays PENDING
	StubPendingFor = 2 * time.Second

	// StubCompleteAfter is the time from creation until a stub job is COMPLETED
	StubCompleteAfter = 6 * time.Second

	// StubRequestTimeout bounds each request handled by the stub server
	StubRequestTimeout = 30 * time.Second
)
