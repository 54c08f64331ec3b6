// Package db implements database wrappers that match a common interface.
package db

import "errors"

// ErrNotFound is returned when a requested evaluation is not stored.
var ErrNotFound = errors.New("evaluation not found")

// Evaluation is the record of one VRF evaluation: the message, and the output
// and proof computed for it.
type Evaluation struct {
	Suite     string `json:"suite"`
	Message   []byte `json:"message"`
	Output    []byte `json:"output"`
	Proof     []byte `json:"proof"`
	Timestamp int64  `json:"ts"`
}

// EvaluationStore is the interface the evaluation server uses to communicate
// with its database.
type EvaluationStore interface {
	// Clone returns a read-only clone of the current store, suitable for
	// distributing to child goroutines. Clones only observe committed data.
	Clone() EvaluationStore

	// Get returns the evaluation with the given output, or ErrNotFound.
	Get(output []byte) (*Evaluation, error)
	// Put stores an evaluation, keyed by its output. Storing an output that
	// is already present overwrites it without changing Count.
	Put(e *Evaluation) error
	// Count returns the number of distinct evaluations stored.
	Count() (uint64, error)

	Commit() error
	Close() error
}
