package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// PaymentRequiredError is returned for 402 responses. PaymentURL points at the
// billing flow the user has to go through before retrying.
type PaymentRequiredError struct {
	Message    string
	PaymentURL string
}

func (e *PaymentRequiredError) Error() string {
	if e.Message == "" {
		return "payment required"
	}
	return "payment required: " + e.Message
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	if code == http.StatusPaymentRequired {
		_, ok := AsPaymentRequired(err)
		return ok
	}
	return false
}

// AsPaymentRequired unwraps err into a PaymentRequiredError.
func AsPaymentRequired(err error) (*PaymentRequiredError, bool) {
	var payErr *PaymentRequiredError
	if errors.As(err, &payErr) {
		return payErr, true
	}
	return nil, false
}

func newPaymentRequired(body []byte) *PaymentRequiredError {
	if !gjson.ValidBytes(body) {
		return &PaymentRequiredError{Message: strings.TrimSpace(string(body))}
	}
	return &PaymentRequiredError{
		Message:    gjson.GetBytes(body, "error").String(),
		PaymentURL: gjson.GetBytes(body, "payment_url").String(),
	}
}

// errorMessage extracts the "error" member of a JSON error body, falling back
// to the raw text and then to the status text.
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "error").String(); msg != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}
