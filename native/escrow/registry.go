package escrow

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"escrowd/storage"
)

const escrowKeyPrefix = "escrow/"

// Registry is a typed facade over the key-value store holding escrow
// records. It carries no business logic: transitions live in the Engine.
type Registry struct {
	db storage.Database
}

// NewRegistry wraps the supplied database handle.
func NewRegistry(db storage.Database) *Registry {
	return &Registry{db: db}
}

func escrowKey(id string) []byte {
	return []byte(escrowKeyPrefix + id)
}

// Create stores the record only if the id is vacant.
func (r *Registry) Create(id string, esc *Escrow) error {
	exists, err := r.db.Has(escrowKey(id))
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if exists {
		return ErrAlreadyInUse
	}
	return r.Put(id, esc)
}

// Get loads the record stored under id.
func (r *Registry) Get(id string) (*Escrow, error) {
	raw, err := r.db.Get(escrowKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	esc := new(Escrow)
	if err := json.Unmarshal(raw, esc); err != nil {
		return nil, fmt.Errorf("registry: decode %q: %w", id, err)
	}
	return esc, nil
}

// Put stores the record unconditionally.
func (r *Registry) Put(id string, esc *Escrow) error {
	if esc == nil {
		return fmt.Errorf("registry: nil escrow")
	}
	raw, err := json.Marshal(esc)
	if err != nil {
		return fmt.Errorf("registry: encode %q: %w", id, err)
	}
	return r.db.Put(escrowKey(id), raw)
}

// Delete removes the record, freeing the id for reuse.
func (r *Registry) Delete(id string) error {
	return r.db.Delete(escrowKey(id))
}

// ListIDs returns every stored escrow id in ascending lexicographic order.
func (r *Registry) ListIDs() ([]string, error) {
	ids := []string{}
	err := r.db.Iterate([]byte(escrowKeyPrefix), func(key, _ []byte) bool {
		ids = append(ids, strings.TrimPrefix(string(key), escrowKeyPrefix))
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return ids, nil
}
