package domain

// Stable business error codes, surfaced verbatim to the client.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeArchived           = "ARCHIVED"
	CodeBadgeOrPin         = "BADGE_OR_PIN"
	CodeNoUserAccount      = "NO_USER_ACCOUNT"
	CodePickingNotFound    = "PICKING_NOT_FOUND"
	CodeOrderLocked        = "ORDER_LOCKED"
	CodeNotInOrder         = "NOT_IN_ORDER"
	CodeWrongOrder         = "WRONG_ORDER"
	CodeOverpick           = "OVERPICK"
	CodeAlreadyScanned     = "ALREADY_SCANNED"
	CodeMismatch           = "MISMATCH"
)

// BusinessError is an expected, recoverable rule violation identified by a
// stable code. It is mapped to a 4xx response at the HTTP layer; anything
// that is not a BusinessError surfaces as an opaque internal error.
type BusinessError struct {
	Code string
}

// Error implements the error interface.
func (e *BusinessError) Error() string {
	return e.Code
}

var (
	ErrInvalidCredentials = &BusinessError{Code: CodeInvalidCredentials}
	ErrArchived           = &BusinessError{Code: CodeArchived}
	ErrBadgeOrPin         = &BusinessError{Code: CodeBadgeOrPin}
	ErrNoUserAccount      = &BusinessError{Code: CodeNoUserAccount}
	ErrPickingNotFound    = &BusinessError{Code: CodePickingNotFound}
	ErrOrderLocked        = &BusinessError{Code: CodeOrderLocked}
	ErrNotInOrder         = &BusinessError{Code: CodeNotInOrder}
	ErrWrongOrder         = &BusinessError{Code: CodeWrongOrder}
	ErrOverpick           = &BusinessError{Code: CodeOverpick}
	ErrAlreadyScanned     = &BusinessError{Code: CodeAlreadyScanned}
)

// LineDiff describes one finalize payload entry that no longer matches the
// remote store. NewRequired is the store's current required quantity, zero
// when the line vanished entirely.
type LineDiff struct {
	LineID      int     `json:"line_id"`
	ProductID   int     `json:"product_id"`
	NewRequired float64 `json:"new_required"`
}

// MismatchError is returned by finalize when the submitted payload drifted
// from the remote store. Nothing is committed when it is raised.
type MismatchError struct {
	Diffs []LineDiff
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return CodeMismatch
}
