// Package memory provides in-memory implementations of the database interfaces.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Bren2010/vrf/db"
)

func dup(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func dupEvaluation(e *db.Evaluation) *db.Evaluation {
	return &db.Evaluation{
		Suite:     e.Suite,
		Message:   dup(e.Message),
		Output:    dup(e.Output),
		Proof:     dup(e.Proof),
		Timestamp: e.Timestamp,
	}
}

// EvaluationStore holds evaluations in a map shared between clones. Unlike the
// LevelDB store, writes are visible to clones immediately.
type EvaluationStore struct {
	mu          *sync.RWMutex
	Evaluations map[string]*db.Evaluation

	ReadOnly bool
}

func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{
		mu:          &sync.RWMutex{},
		Evaluations: make(map[string]*db.Evaluation),

		ReadOnly: false,
	}
}

func (es *EvaluationStore) Clone() db.EvaluationStore {
	return &EvaluationStore{
		mu:          es.mu,
		Evaluations: es.Evaluations,

		ReadOnly: true,
	}
}

func (es *EvaluationStore) Get(output []byte) (*db.Evaluation, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	e, ok := es.Evaluations[fmt.Sprintf("%x", output)]
	if !ok {
		return nil, db.ErrNotFound
	}
	return dupEvaluation(e), nil
}

func (es *EvaluationStore) Put(e *db.Evaluation) error {
	if es.ReadOnly {
		panic("store is readonly")
	} else if e == nil || e.Output == nil {
		return errors.New("unable to store evaluation without output")
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	es.Evaluations[fmt.Sprintf("%x", e.Output)] = dupEvaluation(e)
	return nil
}

func (es *EvaluationStore) Count() (uint64, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return uint64(len(es.Evaluations)), nil
}

func (es *EvaluationStore) Commit() error { return nil }
func (es *EvaluationStore) Close() error  { return nil }
