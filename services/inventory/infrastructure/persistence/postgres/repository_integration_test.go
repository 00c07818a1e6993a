package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/migrations/inventory"
	"github.com/uconn-hacklab/inventory-tracking/pkg/database"
	"github.com/uconn-hacklab/inventory-tracking/pkg/logger"
	"github.com/uconn-hacklab/inventory-tracking/pkg/migrator"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/repositories"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/services"
)

var (
	_ repositories.ItemRepository        = (*ItemRepository)(nil)
	_ repositories.TransactionRepository = (*TransactionRepository)(nil)
)

func setupDB(t *testing.T) *database.Database {
	t.Helper()
	url := os.Getenv("INVENTORY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("INVENTORY_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPool(ctx, url, database.DefaultPoolOptions, logger.Discard())
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrator.Up(ctx, db.DB(), inventory.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func resolve(t *testing.T, repo *TransactionRepository, id uuid.UUID) int64 {
	t.Helper()
	var history []models.Transaction
	for txn, err := range repo.History(context.Background(), id) {
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		history = append(history, txn)
	}
	return services.Resolve(slices.Values(history))
}

func TestItemRepository_Integration(t *testing.T) {
	db := setupDB(t)
	repo := NewItemRepository(db, nil)
	ctx := context.Background()

	item := models.NewItem(uuid.New(), "Resistor 10k", "1/4W")
	if err := repo.Save(ctx, item); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != item.ID || got.Name != item.Name || got.Description != item.Description {
		t.Errorf("got %+v, want %+v", got, item)
	}

	if err := repo.Save(ctx, item); !errors.Is(err, domain.ErrDuplicateIdentifier) {
		t.Fatalf("expected ErrDuplicateIdentifier, got %v", err)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	exists, err := repo.Exists(ctx, item.ID)
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v", exists, err)
	}
}

func TestTransactionRepository_Integration(t *testing.T) {
	db := setupDB(t)
	items := NewItemRepository(db, nil)
	txns := NewTransactionRepository(db, nil)
	ctx := context.Background()

	item := models.NewItem(uuid.New(), "Resistor 10k", "")
	if err := items.Save(ctx, item); err != nil {
		t.Fatal(err)
	}

	t.Run("resistor scenario", func(t *testing.T) {
		steps := []struct {
			method models.Method
			qty    int64
			want   int64
		}{
			{models.MethodAdd, 100, 100},
			{models.MethodBorrow, 30, 70},
			{models.MethodLost, 5, 65},
		}
		var last int64
		for _, s := range steps {
			txn := &models.Transaction{ItemID: item.ID, Method: s.method, Quantity: s.qty}
			if err := txns.Append(ctx, txn); err != nil {
				t.Fatalf("Append %s: %v", s.method, err)
			}
			if txn.Sequence <= last {
				t.Fatalf("sequence %d not after %d", txn.Sequence, last)
			}
			last = txn.Sequence
			if got := resolve(t, txns, item.ID); got != s.want {
				t.Fatalf("after %s %d: quantity %d, want %d", s.method, s.qty, got, s.want)
			}
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		err := txns.Append(ctx, &models.Transaction{ItemID: uuid.New(), Method: models.MethodAdd, Quantity: 1})
		if !errors.Is(err, domain.ErrUnknownItem) {
			t.Fatalf("expected ErrUnknownItem, got %v", err)
		}
	})

	t.Run("cancelled append leaves no record", func(t *testing.T) {
		before := resolve(t, txns, item.ID)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := txns.Append(cctx, &models.Transaction{ItemID: item.ID, Method: models.MethodAdd, Quantity: 1000})
		if err == nil {
			t.Fatal("expected error on cancelled context")
		}
		if after := resolve(t, txns, item.ID); after != before {
			t.Fatalf("quantity changed from %d to %d", before, after)
		}
	})
}

func TestTransactionRepository_ConcurrentAppends_Integration(t *testing.T) {
	db := setupDB(t)
	items := NewItemRepository(db, nil)
	txns := NewTransactionRepository(db, nil)
	ctx := context.Background()

	item := models.NewItem(uuid.New(), "Concurrent widget", "")
	if err := items.Save(ctx, item); err != nil {
		t.Fatal(err)
	}

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := txns.Append(ctx, &models.Transaction{ItemID: item.ID, Method: models.MethodAdd, Quantity: 1}); err != nil {
				t.Errorf("Append: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := resolve(t, txns, item.ID); got != n {
		t.Fatalf("expected quantity %d, got %d", n, got)
	}

	var count int
	if err := db.DB().QueryRowContext(ctx, `SELECT count(*) FROM "transaction" WHERE item_uuid = $1`, item.ID.String()).Scan(&count); err != nil && !errors.Is(err, sql.ErrNoRows) {
		t.Fatal(err)
	}
	if count != n {
		t.Fatalf("expected %d rows, got %d", n, count)
	}
}
