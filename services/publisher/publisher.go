package publisher

// Publisher represents a service for publishing sync reports
type Publisher interface {
	// Publish publishes a message under the given field key
	Publish(key string, message []byte) error

	// TrimStreams trims the report stream to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
