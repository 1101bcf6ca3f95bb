package store

import (
	"strconv"

	bolt "go.etcd.io/bbolt"
	. "src.graf.sh/pkg/store/storedefs"
)

const bucketView = "view"

func init() {
	initDB["initialize view table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketView))
		return err
	}
}

// SetView records a viewport parameter, such as "scale" or "offset-x".
func (s *dbStore) SetView(name string, value float64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketView)).Put(
			[]byte(name), []byte(strconv.FormatFloat(value, 'g', -1, 64)))
	})
}

// View queries a viewport parameter.
func (s *dbStore) View(name string) (float64, error) {
	var value float64
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketView)).Get([]byte(name))
		if v == nil {
			return ErrNoView
		}
		var err error
		value, err = strconv.ParseFloat(string(v), 64)
		return err
	})
	return value, err
}
