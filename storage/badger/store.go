package badger

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/halcyard/visimil/core"
	"github.com/halcyard/visimil/storage"
)

// RecordStore implements storage.RecordStore for BadgerDB.
type RecordStore struct {
	backend *Backend
}

var _ storage.RecordStore = (*RecordStore)(nil)

// NewRecordStore creates a record store on top of an open backend.
func NewRecordStore(backend *Backend) (storage.RecordStore, error) {
	return &RecordStore{backend: backend}, nil
}

// NewMemoryStore creates an in-memory store for tests, along with its
// backend. The caller closes both.
func NewMemoryStore() (storage.RecordStore, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}
	store, err := NewRecordStore(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return store, backend, nil
}

// Close releases store resources. The backend is owned by the caller and is
// closed separately.
func (s *RecordStore) Close() error {
	return nil
}

// GetAll retrieves every stored record.
func (s *RecordStore) GetAll(ctx context.Context) ([]*core.ImageRecord, error) {
	records := make([]*core.ImageRecord, 0)

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(imageRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			// Skip timestamp index keys
			if bytes.HasPrefix(item.Key(), []byte(imageRecordTimePrefix+":")) {
				continue
			}

			var record *core.ImageRecord
			err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalImageRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return records, nil
}

// Get retrieves a single record by ID.
func (s *RecordStore) Get(ctx context.Context, id core.ID) (*core.ImageRecord, error) {
	var record *core.ImageRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = s.readRecord(tx, makeImageRecordKey(id))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return record, err
}

// Put stores one or more records.
func (s *RecordStore) Put(ctx context.Context, records ...*core.ImageRecord) ([]*core.ImageRecord, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if record.Id == 0 {
				record.Id = core.IDFromContent(vectorBytes(record.Vector))
			}
			if record.InsertedAt.IsZero() {
				record.InsertedAt = time.Now().UTC()
			}

			key := makeImageRecordKey(record.Id)

			// Re-ingesting the same content overwrites the old record; drop
			// its index entry first in case the timestamp changed.
			old, err := s.readRecord(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				if err := tx.Delete(makeImageTimeKey(old.Timestamp, old.Id)); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalImageRecord(record)); err != nil {
				return err
			}
			timeKey := makeImageTimeKey(record.Timestamp, record.Id)
			if err := tx.Set(timeKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// Delete removes records by their IDs.
func (s *RecordStore) Delete(ctx context.Context, ids ...core.ID) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeImageRecordKey(id)

			record, err := s.readRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeImageTimeKey(record.Timestamp, record.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Recent retrieves up to limit records ordered by timestamp descending.
func (s *RecordStore) Recent(ctx context.Context, limit int) ([]*core.ImageRecord, error) {
	if limit <= 0 {
		return []*core.ImageRecord{}, nil
	}

	ids := make([]core.ID, 0, limit)
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(imageRecordTimePrefix + ":")
		// Seek past the last possible index key, then walk backwards.
		seek := append(append([]byte{}, prefix...), bytes.Repeat([]byte{0xff}, 16)...)
		for iter.Seek(seek); iter.ValidForPrefix(prefix) && len(ids) < limit; iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	records := make([]*core.ImageRecord, 0, len(ids))
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := s.readRecord(tx, makeImageRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *RecordStore) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(imageRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if bytes.HasPrefix(iter.Item().Key(), []byte(imageRecordTimePrefix+":")) {
				continue
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// Clear removes all records.
func (s *RecordStore) Clear(ctx context.Context) error {
	return s.backend.DropAll()
}

// readRecord reads and unmarshals a record, returning nil if absent.
func (s *RecordStore) readRecord(tx *badger.Txn, key []byte) (*core.ImageRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	var record *core.ImageRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalImageRecord(val)
		return err
	})
	return record, err
}

// vectorBytes renders a vector as bytes for content hashing.
func vectorBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
