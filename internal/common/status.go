package common

// StatusError is a deliberately raised, client-facing error. Kind is one of
// the sentinel kinds above; Status and UserVerificationStatus are rendered
// verbatim in the response body so the UI can branch on them.
type StatusError struct {
	Kind                   error
	Status                 string
	Message                string
	UserVerificationStatus string
}

func (e *StatusError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Status != "":
		return e.Status
	case e.Kind != nil:
		return e.Kind.Error()
	}
	return "unknown error"
}

func (e *StatusError) Unwrap() error { return e.Kind }

// NewStatusError builds a StatusError of the given kind with a client message.
func NewStatusError(kind error, message string) *StatusError {
	return &StatusError{Kind: kind, Message: message}
}
