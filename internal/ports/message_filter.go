package ports

// MessageFilter is a long-running mail filter service
type MessageFilter interface {
	// ListenAndServe blocks until the filter is stopped or fails
	ListenAndServe() error

	// Stop stops the filter service
	Stop() error
}
