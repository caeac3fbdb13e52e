// Package catalog persists extraction-run results so repeated runs against
// evidence stay auditable. Records are msgpack encoded and s2 compressed
// inside a badger store.
package catalog

import (
	"histex/lib/cnst"
	"histex/lib/structs"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/s2"
	"github.com/vmihailenco/msgpack/v5"
)

func Connect(dbpath string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dbpath)
	opts = opts.WithLoggingLevel(badger.ERROR)
	opts.SyncWrites = true
	return badger.Open(opts)
}

func SaveRun(run *structs.RunResult, db *badger.DB) error {
	data, err := msgpack.Marshal(run)
	if err != nil {
		return err
	}
	return setNode(runKey(run.RunID), data, db)
}

func GetRun(runID string, db *badger.DB) (*structs.RunResult, error) {
	data, err := getNode(runKey(runID), db)
	if err == badger.ErrKeyNotFound {
		return nil, cnst.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	var run structs.RunResult
	err = msgpack.Unmarshal(data, &run)
	return &run, err
}

func ListRuns(db *badger.DB) ([]structs.RunSummary, error) {
	var summaries []structs.RunSummary

	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 100
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(cnst.RunNamespace)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			encoded, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			data, err := s2.Decode(nil, encoded)
			if err != nil {
				return err
			}

			var run structs.RunResult
			if err := msgpack.Unmarshal(data, &run); err != nil {
				return err
			}
			summaries = append(summaries, structs.RunSummary{
				RunID:          run.RunID,
				ImagePath:      run.ImagePath,
				FilesFound:     run.FilesFound,
				FilesExtracted: run.FilesExtracted,
				CreatedAt:      run.CreatedAt,
			})
		}
		return nil
	})

	return summaries, err
}

func runKey(runID string) []byte {
	return []byte(cnst.RunNamespace + runID)
}

func setNode(key, data []byte, db *badger.DB) error {
	encoded := s2.EncodeBest(nil, data)
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, encoded)
	})
}

func getNode(key []byte, db *badger.DB) ([]byte, error) {
	var encoded []byte

	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		encoded, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s2.Decode(nil, encoded)
}
