package app

import "github.com/google/uuid"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation identifies a single invocation of the application. Its ID tags
// every log line written during the invocation.
type Operation struct {
	ID     uuid.UUID
	Name   string
	Status string // StatusSuccess or StatusError
}

// NewOperation creates an operation with a fresh random ID.
func NewOperation(name string) *Operation {
	return &Operation{
		ID:     uuid.New(),
		Name:   name,
		Status: StatusSuccess,
	}
}

// ShortID is the first eight hex digits of ID, enough to tell interleaved
// log lines apart.
func (op *Operation) ShortID() string {
	return op.ID.String()[:8]
}

// Failed reports whether any step of the operation returned an error.
func (op *Operation) Failed() bool {
	return op.Status == StatusError
}
