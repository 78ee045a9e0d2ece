package storagemodels

import (
	"time"
)

// ChangeBatch is one delivery from a change-feed subscription
type ChangeBatch struct {
	Items        []Item    // Items created or updated, oldest first
	Continuation string    // Token that resumes right after this batch
	Error        error     // Set when the subscription stops on a failure
	Meta         ChangeMeta
}

// ChangeMeta contains metadata about a delivered batch
type ChangeMeta struct {
	BatchNumber int       // 1-based batch counter for this subscription
	ItemsSeen   int64     // Items delivered so far, this batch included
	Timestamp   time.Time // When the batch was read
}

// ChangeFeedOptions configures change-feed consumption
type ChangeFeedOptions struct {
	BufferSize      int                  // Channel buffer size (default: 16)
	PageSize        int                  // Max items per read (default: 100)
	PollInterval    time.Duration        // Wait after an empty read (default: 1s)
	MaxRetries      int                  // Retry attempts for transient errors (default: 3)
	RetryBackoff    time.Duration        // Initial backoff between retries (default: 500ms)
	Lease           string               // Checkpoint name; defaults to database/container
	ProgressHandler func(ChangeProgress) // Optional progress callback
	ErrorHandler    func(error) bool     // Return true to keep polling, false to stop
}

// ChangeProgress tracks consumption progress
type ChangeProgress struct {
	ItemsProcessed int64     // Total items delivered
	BatchesRead    int       // Total non-empty batches delivered
	Continuation   string    // Last persisted continuation
	Errors         []error   // Accumulated non-fatal errors
	StartTime      time.Time // When consumption started
	CurrentRate    float64   // Items per second
}

// ChangeFeedOption is a functional option for configuring the change feed
type ChangeFeedOption func(*ChangeFeedOptions)

// DefaultChangeFeedOptions returns default change-feed options
func DefaultChangeFeedOptions() ChangeFeedOptions {
	return ChangeFeedOptions{
		BufferSize:   16,
		PageSize:     100,
		PollInterval: time.Second,
		MaxRetries:   3,
		RetryBackoff: 500 * time.Millisecond,
	}
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) ChangeFeedOption {
	return func(opts *ChangeFeedOptions) {
		opts.BufferSize = size
	}
}

// WithPageSize sets the maximum number of items per read
func WithPageSize(size int) ChangeFeedOption {
	return func(opts *ChangeFeedOptions) {
		opts.PageSize = size
	}
}

// WithPollInterval sets how long to wait after an empty read
func WithPollInterval(interval time.Duration) ChangeFeedOption {
	return func(opts *ChangeFeedOptions) {
		opts.PollInterval = interval
	}
}

// WithMaxRetries sets the maximum retry attempts
func WithMaxRetries(retries int) ChangeFeedOption {
	return func(opts *ChangeFeedOptions) {
		opts.MaxRetries = retries
	}
}

// WithRetryBackoff sets the initial retry backoff duration
func WithRetryBackoff(backoff time.Duration) ChangeFeedOption {
	return func(opts *ChangeFeedOptions) {
		opts.RetryBackoff = backoff
	}
}

// WithLease sets the checkpoint name used to persist the continuation
func WithLease(lease string) ChangeFeedOption {
	return func(opts *ChangeFeedOptions) {
		opts.Lease = lease
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(handler func(ChangeProgress)) ChangeFeedOption {
	return func(opts *ChangeFeedOptions) {
		opts.ProgressHandler = handler
	}
}

// WithErrorHandler sets an error handler that can decide whether to continue
func WithErrorHandler(handler func(error) bool) ChangeFeedOption {
	return func(opts *ChangeFeedOptions) {
		opts.ErrorHandler = handler
	}
}
