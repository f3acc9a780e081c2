package entity

import "fmt"

// ErrorKind classifies trade-pipeline failures. Classification is structural:
// the RPC decoding layer assigns a kind once, and callers match on the kind
// instead of scraping message strings.
type ErrorKind string

const (
	ErrInvalidAmount       ErrorKind = "InvalidAmount"
	ErrInvalidAddress      ErrorKind = "InvalidAddress"
	ErrInsufficientFunds   ErrorKind = "InsufficientFunds"
	ErrNoLiquidity         ErrorKind = "NoLiquidity"
	ErrLikelyRevert        ErrorKind = "LikelyRevert"
	ErrDeadlineExpired     ErrorKind = "DeadlineExpired"
	ErrPendingTimeout      ErrorKind = "PendingTimeout"
	ErrProviderUnavailable ErrorKind = "ProviderUnavailable"
	ErrInvalidKey          ErrorKind = "InvalidKey"
	ErrTransferFailed      ErrorKind = "TransferFailed"
	ErrWalletNotFound      ErrorKind = "WalletNotFound"
	ErrInternal            ErrorKind = "Internal"
)

// Retryable reports whether a failure of this kind is safe to retry.
// DeadlineExpired is safe with a fresh deadline since no state changed;
// PendingTimeout must never be auto-retried (nonce reuse hazard).
// NoLiquidity reflects the state of the pool, not a transient fault, so a
// retry with the same pair is pointless.
func (k ErrorKind) Retryable() bool {
	return k == ErrDeadlineExpired || k == ErrProviderUnavailable
}

// TradeError is the typed error surfaced by the swap pipeline. TxHash is set
// as soon as a transaction hash is known, even when the swap later fails, so
// the caller can always point the user at the explorer.
type TradeError struct {
	Kind    ErrorKind
	Message string
	TxHash  string
	Err     error
}

func (e *TradeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *TradeError) Unwrap() error { return e.Err }

// NewTradeError builds a TradeError wrapping an optional cause.
func NewTradeError(kind ErrorKind, message string, cause error) *TradeError {
	return &TradeError{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the ErrorKind from err, or ErrInternal for untyped errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var te *TradeError
	if asTradeError(err, &te) {
		return te.Kind
	}
	return ErrInternal
}

// AsTradeError walks the wrap chain and returns the first TradeError.
func AsTradeError(err error) (*TradeError, bool) {
	var te *TradeError
	if asTradeError(err, &te) {
		return te, true
	}
	return nil, false
}

// asTradeError is a tiny errors.As specialization kept here so that entity
// does not import the errors package in every call site.
func asTradeError(err error, target **TradeError) bool {
	for err != nil {
		if te, ok := err.(*TradeError); ok {
			*target = te
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
