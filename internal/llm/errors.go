package llm

import "fmt"

// ErrorKind classifies a model failure.
type ErrorKind string

const (
	// KindUpstream means the completion endpoint could not be reached or rejected the call.
	KindUpstream ErrorKind = "upstream"
	// KindEmptyReply means the endpoint answered without any text content.
	KindEmptyReply ErrorKind = "empty_reply"
	// KindMalformedReply means the reply was not a usable recipe JSON object.
	KindMalformedReply ErrorKind = "malformed_reply"
)

// ModelError is returned by every failed generate or enhance call.
type ModelError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s recipe: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}
