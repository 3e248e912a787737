package application

import (
	"errors"
	"fmt"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
)

var (
	// ErrInvalidRequest signals malformed input. Never retried.
	ErrInvalidRequest = errors.New("invalid order request")
	// ErrUserNotFound signals the order references an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound signals a line references an unknown product.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock signals a line asks for more units than are on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrPersistence signals a storage failure. The cause is not exposed to clients.
	ErrPersistence = errors.New("order persistence failure")
)

// Kind classifies order creation failures so callers branch without parsing text.
type Kind string

const (
	KindNone              Kind = ""
	KindInvalidRequest    Kind = "invalid_request"
	KindUserNotFound      Kind = "user_not_found"
	KindProductNotFound   Kind = "product_not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindPersistence       Kind = "persistence_failure"
)

// KindOf reports the failure kind of err, or KindNone for unclassified errors.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrUserNotFound):
		return KindUserNotFound
	case errors.Is(err, ErrProductNotFound):
		return KindProductNotFound
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindNone
	}
}

// InvalidRequestError names the offending product when the fault is per line.
type InvalidRequestError struct {
	Reason    string
	ProductID string
	Err       error
}

func (e *InvalidRequestError) Error() string {
	if e.ProductID != "" {
		return fmt.Sprintf("%s: %s (product %s)", ErrInvalidRequest, e.Reason, e.ProductID)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRequest, e.Reason)
}

func (e *InvalidRequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidRequest}
	}
	return []error{ErrInvalidRequest, e.Err}
}

type UserNotFoundError struct {
	UserID string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %s not found", e.UserID)
}

func (e *UserNotFoundError) Unwrap() error { return ErrUserNotFound }

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InsufficientStockError carries the remediation data for a short line.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PersistenceError wraps the storage cause for logs while classifying as ErrPersistence.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrPersistence, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPersistence}
	}
	return []error{ErrPersistence, e.Err}
}

// ErrorDetails is the serializable form of a classified error. It survives
// transport boundaries such as workflow activity results.
type ErrorDetails struct {
	Kind        Kind   `json:"kind"`
	Message     string `json:"message"`
	Reason      string `json:"reason,omitempty"`
	UserID      string `json:"userId,omitempty"`
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
	Available   int    `json:"available,omitempty"`
	Requested   int    `json:"requested,omitempty"`
}

// DetailsOf extracts the details of a classified error.
func DetailsOf(err error) (ErrorDetails, bool) {
	kind := KindOf(err)
	if kind == KindNone {
		return ErrorDetails{}, false
	}
	details := ErrorDetails{Kind: kind, Message: err.Error()}
	var (
		invalid  *InvalidRequestError
		user     *UserNotFoundError
		product  *ProductNotFoundError
		shortage *InsufficientStockError
	)
	switch {
	case errors.As(err, &invalid):
		details.Reason = invalid.Reason
		details.ProductID = invalid.ProductID
	case errors.As(err, &user):
		details.UserID = user.UserID
	case errors.As(err, &product):
		details.ProductID = product.ProductID
	case errors.As(err, &shortage):
		details.ProductID = shortage.ProductID
		details.ProductName = shortage.ProductName
		details.Available = shortage.Available
		details.Requested = shortage.Requested
	}
	return details, true
}

// ErrorFromDetails rebuilds the typed error described by details.
func ErrorFromDetails(details ErrorDetails) error {
	switch details.Kind {
	case KindInvalidRequest:
		reason := details.Reason
		if reason == "" {
			reason = details.Message
		}
		return &InvalidRequestError{Reason: reason, ProductID: details.ProductID}
	case KindUserNotFound:
		return &UserNotFoundError{UserID: details.UserID}
	case KindProductNotFound:
		return &ProductNotFoundError{ProductID: details.ProductID}
	case KindInsufficientStock:
		return &InsufficientStockError{
			ProductID:   details.ProductID,
			ProductName: details.ProductName,
			Available:   details.Available,
			Requested:   details.Requested,
		}
	case KindPersistence:
		// The cause stays in the worker logs.
		return &PersistenceError{Op: "place order"}
	default:
		return errors.New(details.Message)
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrEmptyUserID) ||
		errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return err
}
