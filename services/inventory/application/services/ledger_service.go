package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"

	pkgcache "github.com/uconn-hacklab/inventory-tracking/pkg/cache"
	"github.com/uconn-hacklab/inventory-tracking/pkg/logger"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/repositories"
	domainsvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/services"
)

// ItemCache is the read-through cache for immutable item metadata.
// *pkgcache.ItemCache satisfies it.
type ItemCache interface {
	Get(ctx context.Context, id uuid.UUID) (*pkgcache.CachedItem, error)
	Set(ctx context.Context, item *pkgcache.CachedItem) error
}

// ItemDetail is an item together with its quantity, breakdown and full
// history, all derived from a single history read.
type ItemDetail struct {
	Item     *models.Item
	Quantity int64
	Summary  models.QuantitySummary
	History  []models.Transaction
}

// LedgerService is the entry point for every inventory ledger operation.
// Quantities are never stored; each read folds the item's transaction history.
type LedgerService struct {
	items repositories.ItemRepository
	txns  repositories.TransactionRepository
	cache ItemCache
	log   logger.Logger
	obs   *instruments
	newID func() uuid.UUID
}

// NewLedgerService wires the service. itemCache may be nil.
func NewLedgerService(
	items repositories.ItemRepository,
	txns repositories.TransactionRepository,
	itemCache ItemCache,
	log logger.Logger,
) (*LedgerService, error) {
	obs, err := newInstruments()
	if err != nil {
		return nil, err
	}
	return &LedgerService{
		items: items,
		txns:  txns,
		cache: itemCache,
		log:   log,
		obs:   obs,
		newID: uuid.New,
	}, nil
}

// RegisterItem validates name and description and stores a new Item under a
// fresh identifier. An identifier collision is retried once with a new
// identifier; a second collision is returned as ErrDuplicateIdentifier.
func (s *LedgerService) RegisterItem(ctx context.Context, name, description string) (*models.Item, error) {
	ctx, span := s.obs.start(ctx, "register_item", nil)
	defer span.End()

	itemName, err := models.NewItemName(name)
	if err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", domain.ErrInvalidItemName, err))
	}
	if err := domainsvcs.ValidateName(itemName); err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", domain.ErrInvalidItemName, err))
	}
	if err := domainsvcs.ValidateFreeText("description", description); err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", domain.ErrInvalidDescription, err))
	}

	var item *models.Item
	for attempt := 1; ; attempt++ {
		item = models.NewItem(s.newID(), itemName, description)
		err = s.items.Save(ctx, item)
		if err == nil {
			break
		}
		if attempt == 1 && errors.Is(err, domain.ErrDuplicateIdentifier) {
			s.log.WarnContext(ctx, "item uuid collision, regenerating", "item_uuid", item.ID)
			continue
		}
		return nil, fail(span, fmt.Errorf("register item: %w", err))
	}

	s.obs.itemsRegistered.Add(ctx, 1)
	s.log.InfoContext(ctx, "item registered", "item_uuid", item.ID, "name", item.Name.String())
	return item, nil
}

// GetItem returns ErrItemNotFound for identifiers that were never registered.
// Cache failures are logged and fall through to storage.
func (s *LedgerService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	ctx, span := s.obs.start(ctx, "get_item", id)
	defer span.End()

	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	return item, nil
}

func (s *LedgerService) getItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			return &models.Item{
				ID:          cached.ID,
				Name:        models.ItemName(cached.Name),
				Description: cached.Description,
				CreatedAt:   cached.CreatedAt,
			}, nil
		case !errors.Is(err, pkgcache.ErrCacheMiss):
			s.log.WarnContext(ctx, "item cache read failed", "item_uuid", id, "error", err)
		}
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, &pkgcache.CachedItem{
			ID:          item.ID,
			Name:        item.Name.String(),
			Description: item.Description,
			CreatedAt:   item.CreatedAt,
		}); err != nil {
			s.log.WarnContext(ctx, "item cache write failed", "item_uuid", id, "error", err)
		}
	}
	return item, nil
}

// RecordTransaction appends one transaction to the item's history. Negative
// quantities, unknown methods and unknown items are rejected without
// changing any history.
func (s *LedgerService) RecordTransaction(
	ctx context.Context,
	itemID uuid.UUID,
	method models.Method,
	quantity int64,
	comments string,
) (*models.Transaction, error) {
	ctx, span := s.obs.start(ctx, "record_transaction", itemID)
	defer span.End()

	t := &models.Transaction{
		ItemID:   itemID,
		Method:   method,
		Quantity: quantity,
		Comments: comments,
	}
	if err := domainsvcs.ValidateTransaction(t); err != nil {
		return nil, fail(span, err)
	}

	if err := s.txns.Append(ctx, t); err != nil {
		return nil, fail(span, fmt.Errorf("record transaction: %w", err))
	}

	s.obs.recordTransaction(ctx, t)
	s.log.InfoContext(ctx, "transaction recorded",
		"item_uuid", itemID,
		"sequence", t.Sequence,
		"method", t.Method.String(),
		"quantity", t.Quantity,
	)
	return t, nil
}

// History returns the item's transactions in append order.
func (s *LedgerService) History(ctx context.Context, itemID uuid.UUID) ([]models.Transaction, error) {
	ctx, span := s.obs.start(ctx, "history", itemID)
	defer span.End()

	if err := s.mustExist(ctx, itemID); err != nil {
		return nil, fail(span, err)
	}
	history, err := collect(s.txns.History(ctx, itemID))
	if err != nil {
		return nil, fail(span, fmt.Errorf("read history: %w", err))
	}
	return history, nil
}

// CurrentQuantity folds the item's history without materializing it. The
// result may be negative.
func (s *LedgerService) CurrentQuantity(ctx context.Context, itemID uuid.UUID) (int64, error) {
	ctx, span := s.obs.start(ctx, "current_quantity", itemID)
	defer span.End()

	if err := s.mustExist(ctx, itemID); err != nil {
		return 0, fail(span, err)
	}

	var herr error
	qty := domainsvcs.Resolve(untilErr(s.txns.History(ctx, itemID), &herr))
	if herr != nil {
		return 0, fail(span, fmt.Errorf("read history: %w", herr))
	}
	return qty, nil
}

// QuantitySummary is CurrentQuantity with the per-method breakdown.
func (s *LedgerService) QuantitySummary(ctx context.Context, itemID uuid.UUID) (models.QuantitySummary, error) {
	ctx, span := s.obs.start(ctx, "quantity_summary", itemID)
	defer span.End()

	if err := s.mustExist(ctx, itemID); err != nil {
		return models.QuantitySummary{}, fail(span, err)
	}

	var herr error
	summary := domainsvcs.Summarize(untilErr(s.txns.History(ctx, itemID), &herr))
	if herr != nil {
		return models.QuantitySummary{}, fail(span, fmt.Errorf("read history: %w", herr))
	}
	return summary, nil
}

// ItemDetail reads the history once and derives quantity and summary from
// that same read, so the three always agree.
func (s *LedgerService) ItemDetail(ctx context.Context, itemID uuid.UUID) (*ItemDetail, error) {
	ctx, span := s.obs.start(ctx, "item_detail", itemID)
	defer span.End()

	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, fail(span, err)
	}

	history, err := collect(s.txns.History(ctx, itemID))
	if err != nil {
		return nil, fail(span, fmt.Errorf("read history: %w", err))
	}

	return &ItemDetail{
		Item:     item,
		Quantity: domainsvcs.Resolve(slices.Values(history)),
		Summary:  domainsvcs.Summarize(slices.Values(history)),
		History:  history,
	}, nil
}

func (s *LedgerService) mustExist(ctx context.Context, itemID uuid.UUID) error {
	ok, err := s.items.Exists(ctx, itemID)
	if err != nil {
		return fmt.Errorf("check item: %w", err)
	}
	if !ok {
		return domain.ErrItemNotFound
	}
	return nil
}

func collect(seq iter.Seq2[models.Transaction, error]) ([]models.Transaction, error) {
	history := []models.Transaction{}
	for t, err := range seq {
		if err != nil {
			return nil, err
		}
		history = append(history, t)
	}
	return history, nil
}

// untilErr adapts a fallible history to the resolver. Iteration stops at the
// first error, which is stored in *errp.
func untilErr(seq iter.Seq2[models.Transaction, error], errp *error) iter.Seq[models.Transaction] {
	return func(yield func(models.Transaction) bool) {
		for t, err := range seq {
			if err != nil {
				*errp = err
				return
			}
			if !yield(t) {
				return
			}
		}
	}
}
