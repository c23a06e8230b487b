package alphavantage

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindRateLimit   ErrorKind = "rate_limit"
	KindAPIError    ErrorKind = "api_error"
	KindInformation ErrorKind = "information"
	KindTransport   ErrorKind = "transport"
	KindDecode      ErrorKind = "decode"
)

// ProviderError is the uniform failure value for every provider call.
type ProviderError struct {
	Kind     ErrorKind
	Function string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("alphavantage %s (%s): %s", e.Function, e.Kind, e.Message)
}

// IsRateLimited reports whether err carries the provider's rate-limit note.
func IsRateLimited(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Kind == KindRateLimit
}

// AsProviderError converts any error into a ProviderError, classifying
// unknown errors as transport failures.
func AsProviderError(function string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	return &ProviderError{Kind: KindTransport, Function: function, Message: err.Error()}
}
