package main

import (
	"fmt"
	"time"

	"github.com/Bren2010/vrf/db"
)

type RecordRequest struct {
	Evaluation *db.Evaluation
	Resp       chan<- error // Should be buffered.
}

// recorder is a goroutine that receives evaluations over `ch`, writes them to
// the database, and responds with the result of the commit. It is the only
// writer to `tx`.
func recorder(tx db.EvaluationStore, ch <-chan RecordRequest) {
	for req := range ch {
		start := time.Now()
		err := record(tx, req.Evaluation)
		recordOps.WithLabelValues(fmt.Sprint(err == nil)).Inc()
		recordDur.Observe(float64(time.Since(start).Microseconds()))

		select {
		case req.Resp <- err:
		default:
		}
	}
}

func record(tx db.EvaluationStore, e *db.Evaluation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while recording evaluation: %v", r)
		}
	}()

	if err := tx.Put(e); err != nil {
		return err
	}
	return tx.Commit()
}
