package adapter

import "errors"

var (
	// ErrProjectNotFound maps a 404 from the conversation service: the
	// project id is unknown on the server side.
	ErrProjectNotFound = errors.New("project not found")
	// ErrUnsupportedProvider maps a 400 for a provider id the service does
	// not manage.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrMalformedResponse marks a 2xx response whose body is missing or
	// undecodable. Callers treat it like any transient fetch failure.
	ErrMalformedResponse = errors.New("malformed response body")
)
