package transport

import (
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
)

// SinkErrorKind classifies recovered sink failures so the diagnostic channel
// and metrics can distinguish them without parsing message text.
type SinkErrorKind int

const (
	SinkErrorUnknown SinkErrorKind = iota
	SinkErrorNetwork
	SinkErrorAuth
	SinkErrorSerialization
)

// String returns the metric label for the kind.
func (k SinkErrorKind) String() string {
	switch k {
	case SinkErrorNetwork:
		return "network"
	case SinkErrorAuth:
		return "auth"
	case SinkErrorSerialization:
		return "serialization"
	default:
		return "unknown"
	}
}

// SinkError wraps a failure from a sink operation with its classification
// and the sink it came from.
type SinkError struct {
	Kind SinkErrorKind
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("transport: %s sink %s error: %v", e.Sink, e.Kind, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// authErrorCodes are the AWS API error codes that indicate the credential
// snapshot is no longer accepted.
var authErrorCodes = map[string]bool{
	"UnrecognizedClientException": true,
	"InvalidSignatureException":   true,
	"AccessDeniedException":       true,
	"ExpiredTokenException":       true,
	"InvalidClientTokenId":        true,
}

// classifySinkError wraps err as a SinkError for the named sink, inferring
// the kind from the error chain. An error that is already a SinkError passes
// through unchanged.
func classifySinkError(sink string, err error) *SinkError {
	var alreadyClassified *SinkError
	if errors.As(err, &alreadyClassified) {
		return alreadyClassified
	}

	kind := SinkErrorUnknown
	var apiErr smithy.APIError
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr) && authErrorCodes[apiErr.ErrorCode()]:
		kind = SinkErrorAuth
	case errors.As(err, &netErr):
		kind = SinkErrorNetwork
	}

	return &SinkError{Kind: kind, Sink: sink, Err: err}
}
