// Package memory provides an in-process implementation of the inventory
// repositories. It backs tests and local runs without PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
)

// Store implements repositories.ItemRepository and
// repositories.TransactionRepository over maps guarded by a single RWMutex.
type Store struct {
	mu      sync.RWMutex
	items   map[uuid.UUID]models.Item
	history map[uuid.UUID][]models.Transaction
	seq     int64
	now     func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		items:   make(map[uuid.UUID]models.Item),
		history: make(map[uuid.UUID][]models.Transaction),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Save(ctx context.Context, item *models.Item) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; ok {
		return domain.ErrDuplicateIdentifier
	}
	s.items[item.ID] = *item
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &item, nil
}

func (s *Store) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.items[id]
	return ok, nil
}

// Append stores t under the write lock, so every append across all items is
// totally ordered by Sequence.
func (s *Store) Append(ctx context.Context, t *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[t.ItemID]; !ok {
		return domain.ErrUnknownItem
	}

	s.seq++
	t.Sequence = s.seq
	t.RecordedAt = s.now()
	s.history[t.ItemID] = append(s.history[t.ItemID], *t)
	return nil
}

// History snapshots the item's slice header at the start of each range.
// Stored transactions are never modified, so iteration happens without the
// lock held.
func (s *Store) History(ctx context.Context, itemID uuid.UUID) iter.Seq2[models.Transaction, error] {
	return func(yield func(models.Transaction, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(models.Transaction{}, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err))
			return
		}

		s.mu.RLock()
		snapshot := s.history[itemID]
		s.mu.RUnlock()

		for _, t := range snapshot {
			if !yield(t, nil) {
				return
			}
		}
	}
}
