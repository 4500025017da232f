package cache

import (
	"fmt"

	"github.com/boltdb/bolt"
)

var boltBucket = []byte("blobs")

// Bolt persists blobs into a bolt database on disk.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens, or creates, the database at the given path.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (bc *Bolt) Get(key string) ([]byte, error) {
	var body []byte
	err := bc.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b == nil {
			return fmt.Errorf("bucket %q not found", boltBucket)
		}

		buffer := b.Get([]byte(key))
		if buffer == nil {
			return ErrNotFound
		}

		// the value is only valid within the transaction.
		body = make([]byte, len(buffer))
		copy(body, buffer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (bc *Bolt) Set(key string, body []byte) error {
	return bc.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(boltBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), body)
	})
}

func (bc *Bolt) Unset(key string) error {
	return bc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// Close releases the underlying database.
func (bc *Bolt) Close() error {
	return bc.db.Close()
}
