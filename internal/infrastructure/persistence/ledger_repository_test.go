package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/shared"
)

func TestGormLedgerRepository_Create(t *testing.T) {
	db, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormLedgerRepository(db)

	entry, err := inventory.NewLedgerEntry(uuid.New(), inventory.ChangeTypeRestock, 10, 0, "Initial delivery", uuid.New())
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "ledger_entries"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLedgerRepository_SumQuantityChange(t *testing.T) {
	t.Run("sums signed changes for a variant", func(t *testing.T) {
		db, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormLedgerRepository(db)

		variantID := uuid.New()
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity_change\), 0\) FROM "ledger_entries" WHERE variant_id = \$1`).
			WithArgs(variantID).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(8))

		sum, err := repo.SumQuantityChange(context.Background(), variantID)
		require.NoError(t, err)
		assert.Equal(t, 8, sum)
	})

	t.Run("empty ledger sums to zero", func(t *testing.T) {
		db, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormLedgerRepository(db)

		variantID := uuid.New()
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity_change\), 0\) FROM "ledger_entries" WHERE variant_id = \$1`).
			WithArgs(variantID).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

		sum, err := repo.SumQuantityChange(context.Background(), variantID)
		require.NoError(t, err)
		assert.Equal(t, 0, sum)
	})
}

func TestGormLedgerRepository_FindByVariant(t *testing.T) {
	db, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormLedgerRepository(db)

	variantID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE variant_id = \$1 ORDER BY entry_date DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "variant_id", "quantity_change"}).
			AddRow(uuid.New(), variantID, -2).
			AddRow(uuid.New(), variantID, 10))

	entries, err := repo.FindByVariant(context.Background(), variantID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, -2, entries[0].QuantityChange)
}
