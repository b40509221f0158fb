package subscription

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/fatflowers/pledge/pkg/currency"
	"github.com/fatflowers/pledge/pkg/types"
)

var (
	ErrValidation    = errors.New("missing required fields")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrAlreadyExists = errors.New("subscription already exists")
	ErrNotFound      = errors.New("subscription not found")
)

// RequestError carries the client-facing message of a rejected request.
// errors.Is matches its Kind.
type RequestError struct {
	Kind    error
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Kind }

func newRequestError(kind error, format string, args ...any) error {
	return &RequestError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func errMissingFields() error {
	return newRequestError(ErrValidation, "All fields (donorId, amount, currency, interval, campaignDescription) are required")
}

func errUnsupportedCurrency(code string) error {
	return newRequestError(currency.ErrUnsupportedCurrency, "Currency %s is not supported. Supported currencies: %s",
		code, strings.Join(currency.Supported(), ", "))
}

func errUnsupportedInterval(interval string) error {
	names := lo.Map(types.SupportedIntervals, func(i types.Interval, _ int) string { return i.String() })
	return newRequestError(types.ErrUnsupportedInterval, "Interval %s is not supported. Supported intervals: %s",
		interval, strings.Join(names, ", "))
}

func errInvalidAmount() error {
	return newRequestError(ErrInvalidAmount, "Amount must be a positive number")
}

func errAlreadyExists(donorID string) error {
	return newRequestError(ErrAlreadyExists, "Subscription for donor %s already exists", donorID)
}
