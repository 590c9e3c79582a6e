// Package badger stores wizard steps in an embedded BadgerDB, for single-node
// deployments that run without PostgreSQL.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/ctateo21/homelead/internal/domain/port"
)

// Keys are step/<session_id>/<step_name>.
const keyPrefix = "step/"

type record struct {
	UpdatedAt    time.Time       `json:"updatedAt"`
	ServiceType  string          `json:"serviceType"`
	ResponseData json.RawMessage `json:"responseData"`
	Position     int             `json:"position"`
	IsCompleted  bool            `json:"isCompleted"`
}

// StepRepo implements port.StepRepository on BadgerDB.
type StepRepo struct {
	db *badger.DB
}

// Open opens (or creates) the database under dir.
func Open(dir string) (*StepRepo, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("badger: create %s: %w", dir, err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", dir, err)
	}
	return &StepRepo{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*StepRepo, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("badger: open in-memory: %w", err)
	}
	return &StepRepo{db: db}, nil
}

// Close flushes and closes the database.
func (r *StepRepo) Close() error {
	return r.db.Close()
}

// SaveStep upserts by session and step name. The first position is kept and
// a write older than the stored one is ignored.
func (r *StepRepo) SaveStep(_ context.Context, step port.StoredStep) (port.StoredStep, error) {
	key := stepKey(step.SessionID, step.StepName)
	incoming := record{
		UpdatedAt:    step.UpdatedAt.UTC(),
		ServiceType:  step.ServiceType,
		ResponseData: step.ResponseData,
		Position:     step.Position,
		IsCompleted:  step.IsCompleted,
	}
	if len(incoming.ResponseData) == 0 {
		incoming.ResponseData = json.RawMessage("{}")
	}

	var saved record
	err := r.db.Update(func(txn *badger.Txn) error {
		existing, found, err := get(txn, key)
		if err != nil {
			return err
		}
		if found {
			if existing.UpdatedAt.After(incoming.UpdatedAt) {
				saved = existing
				return nil
			}
			incoming.Position = existing.Position
		}

		data, err := json.Marshal(incoming)
		if err != nil {
			return err
		}
		saved = incoming
		return txn.Set(key, data)
	})
	if err != nil {
		return port.StoredStep{}, fmt.Errorf("save step %s/%s: %w", step.SessionID, step.StepName, err)
	}
	return toStored(step.SessionID, step.StepName, saved), nil
}

// LoadSession returns every stored step for the session ordered by position.
func (r *StepRepo) LoadSession(_ context.Context, sessionID string) ([]port.StoredStep, error) {
	prefix := []byte(keyPrefix + sessionID + "/")
	steps := make([]port.StoredStep, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name := string(item.Key()[len(prefix):])
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var rec record
			if err := json.Unmarshal(raw, &rec); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			steps = append(steps, toStored(sessionID, name, rec))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].Position != steps[j].Position {
			return steps[i].Position < steps[j].Position
		}
		return steps[i].StepName < steps[j].StepName
	})
	return steps, nil
}

func get(txn *badger.Txn, key []byte) (record, bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return record{}, false, nil
	}
	if err != nil {
		return record{}, false, err
	}
	var rec record
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err == nil, err
}

func stepKey(sessionID, stepName string) []byte {
	return []byte(keyPrefix + sessionID + "/" + stepName)
}

func toStored(sessionID, stepName string, rec record) port.StoredStep {
	return port.StoredStep{
		UpdatedAt:    rec.UpdatedAt,
		SessionID:    sessionID,
		ServiceType:  rec.ServiceType,
		StepName:     stepName,
		ResponseData: rec.ResponseData,
		Position:     rec.Position,
		IsCompleted:  rec.IsCompleted,
	}
}
