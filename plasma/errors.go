package plasma

import "fmt"

type ErrorCode string

const (
	IFE_ERR_PARSE ErrorCode = "IFE_ERR_PARSE"

	IFE_ERR_DUPLICATE_EXIT      ErrorCode = "IFE_ERR_DUPLICATE_EXIT"
	IFE_ERR_ALREADY_FINALIZED   ErrorCode = "IFE_ERR_ALREADY_FINALIZED"
	IFE_ERR_ARG_COUNT_MISMATCH  ErrorCode = "IFE_ERR_ARG_COUNT_MISMATCH"
	IFE_ERR_DUPLICATE_INPUT     ErrorCode = "IFE_ERR_DUPLICATE_INPUT"
	IFE_ERR_INCLUSION_PROOF     ErrorCode = "IFE_ERR_INCLUSION_PROOF"
	IFE_ERR_COND_NOT_REGISTERED ErrorCode = "IFE_ERR_COND_NOT_REGISTERED"
	IFE_ERR_COND_REJECTED       ErrorCode = "IFE_ERR_COND_REJECTED"
	IFE_ERR_TOKEN_OVERSPEND     ErrorCode = "IFE_ERR_TOKEN_OVERSPEND"

	IFE_ERR_EXIT_NOT_FOUND        ErrorCode = "IFE_ERR_EXIT_NOT_FOUND"
	IFE_ERR_OUTSIDE_WINDOW        ErrorCode = "IFE_ERR_OUTSIDE_WINDOW"
	IFE_ERR_SLOT_CLAIMED          ErrorCode = "IFE_ERR_SLOT_CLAIMED"
	IFE_ERR_NOT_PAYOUT_TARGET     ErrorCode = "IFE_ERR_NOT_PAYOUT_TARGET"
	IFE_ERR_GUARD_MISMATCH        ErrorCode = "IFE_ERR_GUARD_MISMATCH"
	IFE_ERR_PARSER_NOT_REGISTERED ErrorCode = "IFE_ERR_PARSER_NOT_REGISTERED"

	IFE_ERR_WRONG_BOND ErrorCode = "IFE_ERR_WRONG_BOND"
	IFE_ERR_SLOT_RANGE ErrorCode = "IFE_ERR_SLOT_RANGE"

	IFE_ERR_UNKNOWN_BLOCK ErrorCode = "IFE_ERR_UNKNOWN_BLOCK"
	IFE_ERR_QUARANTINED   ErrorCode = "IFE_ERR_QUARANTINED"
)

type GameError struct {
	Code ErrorCode
	Msg  string
}

func (e *GameError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func Errf(code ErrorCode, format string, args ...any) error {
	return &GameError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the error code from a GameError chain, or "" for foreign
// errors.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if ge, ok := err.(*GameError); ok {
			return ge.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
