package domain

// ErrorKind classifies why a submission was rejected.
type ErrorKind string

const (
	KindShape      ErrorKind = "shape"
	KindRange      ErrorKind = "range"
	KindEnum       ErrorKind = "enum"
	KindDependency ErrorKind = "dependency"
	KindRevision   ErrorKind = "revision"
)

// ValidationError names the first constraint a submission violated.
// The message is the sole user-visible diagnostic, so it always names
// the offending field, the expected shape, and what was received.
type ValidationError struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Rejection is the structured failure returned across the submit boundary:
// the violation plus enough session context for the caller to correct the
// record and resubmit without losing prior progress. The rejected record is
// never appended; history is unchanged.
type Rejection struct {
	Kind          ErrorKind      `json:"kind"`
	Field         string         `json:"field,omitempty"`
	Message       string         `json:"message"`
	Input         map[string]any `json:"input"`
	HistoryLength int            `json:"historyLength"`
	LastSequence  int            `json:"lastSequence"`
}

func (r *Rejection) Error() string {
	return r.Message
}
