package market

import (
	"errors"
	"fmt"
)

// FailureKind classifies operation failures. Best-effort failures (balance
// refresh, sold notification) are logged, never surfaced, so they have no
// kind here.
type FailureKind int

const (
	// FailureValidation: locally detected precondition violation; the
	// network was never touched.
	FailureValidation FailureKind = iota
	// FailureAgent: the wallet agent rejected or threw; state rolled back.
	FailureAgent
	// FailureGateway: network/server error or success:false; no local
	// mutation was applied.
	FailureGateway
)

func (k FailureKind) String() string {
	switch k {
	case FailureValidation:
		return "validation"
	case FailureAgent:
		return "agent"
	case FailureGateway:
		return "gateway"
	default:
		return "unknown"
	}
}

// OpError is the single failure value an operation resolves to.
type OpError struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Local precondition violations.
var (
	ErrNotConnected   = errors.New("wallet not connected")
	ErrListingUnknown = errors.New("listing not found")
	ErrOriginUnknown  = errors.New("ordinal not found in wallet")
	ErrNotOwner       = errors.New("ordinal not owned by connected wallet")
	ErrBadPrice       = errors.New("listing price must be positive")
	ErrBadTipPercent  = errors.New("tip percent not in configured set")
	ErrPriceTooLow    = errors.New("price too low to cover fees")
	ErrSelfPurchase   = errors.New("cannot purchase own listing")
)

func validationErr(op string, err error) *OpError {
	return &OpError{Kind: FailureValidation, Op: op, Err: err}
}

func agentErr(op string, err error) *OpError {
	return &OpError{Kind: FailureAgent, Op: op, Err: err}
}

func gatewayErr(op string, err error) *OpError {
	return &OpError{Kind: FailureGateway, Op: op, Err: err}
}

// Notifier surfaces operation outcomes. The display mechanism is outside
// this core; internal/notify provides the queue used by the app.
type Notifier interface {
	Success(op, message string)
	Failure(op, message string)
}

// NopNotifier discards outcomes.
type NopNotifier struct{}

func (NopNotifier) Success(op, message string) {}
func (NopNotifier) Failure(op, message string) {}
