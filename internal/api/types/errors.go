package types

import appErr "github.com/formrelay/relay/pkg/errors"

func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	return &APIError{Code: string(appErr.CodeOf(err)), Message: appErr.ReasonOf(err)}
}

// ErrorStatus builds the /submit error body for err.
func ErrorStatus(err error) StatusResponse {
	reason := appErr.ReasonOf(err)
	if reason == "" {
		reason = "unknown error"
	}
	return StatusResponse{Status: StatusError, Message: reason}
}
