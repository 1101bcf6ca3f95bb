package store

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"
	. "src.graf.sh/pkg/store/storedefs"
)

const bucketExpr = "expr"

func init() {
	initDB["initialize expression table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketExpr))
		return err
	}
}

// AddExpr appends an expression to the list and returns its sequence number.
func (s *dbStore) AddExpr(text string) (int, error) {
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketExpr))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), []byte(text))
	})
	return int(seq), err
}

// DelExpr deletes the expression with the given sequence number.
func (s *dbStore) DelExpr(seq int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketExpr))
		k := marshalSeq(uint64(seq))
		if b.Get(k) == nil {
			return ErrNoMatchingExpr
		}
		return b.Delete(k)
	})
}

// Expr queries the expression with the given sequence number.
func (s *dbStore) Expr(seq int) (string, error) {
	var text string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketExpr)).Get(marshalSeq(uint64(seq)))
		if v == nil {
			return ErrNoMatchingExpr
		}
		text = string(v)
		return nil
	})
	return text, err
}

// Exprs returns all expressions in the order they were added.
func (s *dbStore) Exprs() ([]Expr, error) {
	var exprs []Expr
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketExpr)).ForEach(func(k, v []byte) error {
			exprs = append(exprs, Expr{Text: string(v), Seq: int(unmarshalSeq(k))})
			return nil
		})
	})
	return exprs, err
}

// ClearExprs deletes all expressions. Sequence numbers keep increasing
// afterwards.
func (s *dbStore) ClearExprs() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketExpr))
		seq := b.Sequence()
		if err := tx.DeleteBucket([]byte(bucketExpr)); err != nil {
			return err
		}
		nb, err := tx.CreateBucket([]byte(bucketExpr))
		if err != nil {
			return err
		}
		return nb.SetSequence(seq)
	})
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
