package db

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
)

const leveldbCountKey = "count"

func dup(in []byte) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

// ldbConn is a wrapper around a base LevelDB database that handles batching
// writes between commits transparently.
type ldbConn struct {
	conn     *leveldb.DB
	readonly bool
	batch    map[string][]byte
}

func newLDBConn(conn *leveldb.DB, readonly bool) *ldbConn {
	return &ldbConn{conn, readonly, make(map[string][]byte)}
}

func (c *ldbConn) Get(key string) ([]byte, error) {
	if value, ok := c.batch[key]; ok {
		return dup(value), nil
	}
	return c.conn.Get([]byte(key), nil)
}

func (c *ldbConn) Put(key string, value []byte) {
	if c.readonly {
		panic("connection is readonly")
	}
	c.batch[key] = dup(value)
}

func (c *ldbConn) Commit() error {
	if c.readonly {
		panic("connection is readonly")
	}

	// The counter is written last, so that a crash mid-commit never leaves
	// it ahead of the stored evaluations.
	b := new(leveldb.Batch)
	for key, value := range c.batch {
		if key == leveldbCountKey {
			continue
		}
		b.Put([]byte(key), value)
	}
	if err := c.conn.Write(b, nil); err != nil {
		return err
	}
	if value, ok := c.batch[leveldbCountKey]; ok {
		if err := c.conn.Put([]byte(leveldbCountKey), value, nil); err != nil {
			return err
		}
	}

	c.batch = make(map[string][]byte)
	return nil
}

// ldbEvaluationStore implements the EvaluationStore interface over a LevelDB
// database.
type ldbEvaluationStore struct {
	conn *ldbConn
}

// NewLDBEvaluationStore opens the LevelDB database at file, recovering it if
// it is corrupted.
func NewLDBEvaluationStore(file string) (EvaluationStore, error) {
	conn, err := leveldb.OpenFile(file, nil)
	if errors.IsCorrupted(err) {
		conn, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &ldbEvaluationStore{newLDBConn(conn, false)}, nil
}

func (ldb *ldbEvaluationStore) Clone() EvaluationStore {
	return &ldbEvaluationStore{newLDBConn(ldb.conn.conn, true)}
}

func (ldb *ldbEvaluationStore) Get(output []byte) (*Evaluation, error) {
	raw, err := ldb.conn.Get("e" + fmt.Sprintf("%x", output))
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	e := &Evaluation{}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (ldb *ldbEvaluationStore) Put(e *Evaluation) error {
	key := "e" + fmt.Sprintf("%x", e.Output)
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	_, err = ldb.conn.Get(key)
	if err == leveldb.ErrNotFound {
		count, err := ldb.Count()
		if err != nil {
			return err
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, count+1)
		ldb.conn.Put(leveldbCountKey, buf)
	} else if err != nil {
		return err
	}

	ldb.conn.Put(key, raw)
	return nil
}

func (ldb *ldbEvaluationStore) Count() (uint64, error) {
	raw, err := ldb.conn.Get(leveldbCountKey)
	if err == leveldb.ErrNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	} else if len(raw) != 8 {
		return 0, fmt.Errorf("stored evaluation count is malformed")
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (ldb *ldbEvaluationStore) Commit() error {
	return ldb.conn.Commit()
}

func (ldb *ldbEvaluationStore) Close() error {
	if ldb.conn.readonly {
		return nil
	}
	return ldb.conn.conn.Close()
}
