package integration

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinventory "github.com/storecore/backend/internal/application/inventory"
	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/infrastructure/persistence"
)

var skuCounter atomic.Int64

// nextSKU issues a unique SKU per call so tests sharing a container never
// trip the unique index.
func nextSKU(prefix string) string {
	return fmt.Sprintf("%s-%06d", prefix, skuCounter.Add(1))
}

// newStockService wires a StockService against the test database, the same
// way cmd/server does.
func newStockService(tdb *TestDB) *appinventory.StockService {
	return appinventory.NewStockService(
		persistence.NewGormScope(tdb.DB),
		persistence.NewGormVariantRepository(tdb.DB),
		persistence.NewGormLedgerRepository(tdb.DB),
	)
}

// seedVariant persists a product with one active variant and returns the
// variant. Stock starts at zero; use restock to add units through the ledger.
func seedVariant(t *testing.T, tdb *TestDB, skuPrefix string) *catalog.ProductVariant {
	t.Helper()
	ctx := context.Background()

	productRepo := persistence.NewGormProductRepository(tdb.DB)
	variantRepo := persistence.NewGormVariantRepository(tdb.DB)

	product, err := catalog.NewProduct("Canvas Tote", "Heavy cotton tote bag", decimal.NewFromInt(25))
	require.NoError(t, err)
	require.NoError(t, productRepo.Save(ctx, product))

	variant, err := catalog.NewProductVariant(product.ID, nextSKU(skuPrefix), "M", "navy", decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, variantRepo.Save(ctx, variant))

	return variant
}

// restock adds units to a variant through the adjustment path so the ledger
// stays the source of truth.
func restock(t *testing.T, svc *appinventory.StockService, variantID uuid.UUID, quantity int) {
	t.Helper()

	_, err := svc.Adjust(context.Background(), appinventory.AdjustStockCommand{
		VariantID:      variantID,
		QuantityChange: quantity,
		ChangeType:     inventory.ChangeTypeRestock,
		Reason:         "test restock",
		PerformedBy:    uuid.New(),
	})
	require.NoError(t, err)
}
