package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents fetch failures, non-2xx responses and timeouts
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents the source asking us to back off
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeValidation represents a fetched page that is not the queried movie
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeExtractionEmpty represents a validated page without a parsable table
	ErrorTypeExtractionEmpty ErrorType = "extraction_empty"
	// ErrorTypeNormalization represents a single unparsable amount cell
	ErrorTypeNormalization ErrorType = "normalization"
	// ErrorTypeMissingReleaseDate represents a title that cannot anchor day numbers
	ErrorTypeMissingReleaseDate ErrorType = "missing_release_date"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeStore represents persistent store errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeFeed represents title feed errors
	ErrorTypeFeed ErrorType = "feed"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// SyncError represents an error raised while syncing a single title
type SyncError struct {
	Type    ErrorType
	Title   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Title, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Title, e.Message)
}

// Unwrap returns the underlying error
func (e *SyncError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error must abort the remaining batch.
// Only the upstream feed and the store are allowed to stop a run.
func (e *SyncError) IsFatal() bool {
	switch e.Type {
	case ErrorTypeStore, ErrorTypeFeed:
		return true
	default:
		return false
	}
}

// IsFatal reports whether err (or anything it wraps) is a fatal SyncError
func IsFatal(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.IsFatal()
	}
	return false
}

// IsType reports whether err wraps a SyncError of the given type
func IsType(err error, errType ErrorType) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Type == errType
	}
	return false
}

// New creates a new SyncError
func New(errType ErrorType, title, message string, err error) *SyncError {
	return &SyncError{
		Type:    errType,
		Title:   title,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(title, message string, err error) *SyncError {
	return New(ErrorTypeNetwork, title, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(title string, duration time.Duration) *SyncError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, title, message, nil)
}

// NewValidation creates a new validation error
func NewValidation(title, message string) *SyncError {
	return New(ErrorTypeValidation, title, message, nil)
}

// NewExtractionEmpty creates a new empty extraction error
func NewExtractionEmpty(title, message string) *SyncError {
	return New(ErrorTypeExtractionEmpty, title, message, nil)
}

// NewNormalization creates a new normalization error
func NewNormalization(title, message string) *SyncError {
	return New(ErrorTypeNormalization, title, message, nil)
}

// NewMissingReleaseDate creates a new missing release date error
func NewMissingReleaseDate(title string, err error) *SyncError {
	return New(ErrorTypeMissingReleaseDate, title, "release date missing or unparseable", err)
}

// NewParsing creates a new parsing error
func NewParsing(title, message string, err error) *SyncError {
	return New(ErrorTypeParsing, title, message, err)
}

// NewStore creates a new store error
func NewStore(title, message string, err error) *SyncError {
	return New(ErrorTypeStore, title, message, err)
}

// NewFeed creates a new feed error
func NewFeed(message string, err error) *SyncError {
	return New(ErrorTypeFeed, "", message, err)
}

// NewCache creates a new cache error
func NewCache(title, message string, err error) *SyncError {
	return New(ErrorTypeCache, title, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(message string, err error) *SyncError {
	return New(ErrorTypePublisher, "", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *SyncError {
	return New(ErrorTypeConfiguration, "", message, err)
}
