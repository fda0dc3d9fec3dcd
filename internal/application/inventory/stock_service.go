package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storecore/backend/internal/application/txn"
	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/shared"
	"github.com/storecore/backend/internal/infrastructure/telemetry"
)

// maxAdjustAttempts bounds the optimistic-lock retry loop. A conflict
// means another adjustment committed between our read and write; the
// whole unit is re-run against the fresh quantity.
const maxAdjustAttempts = 3

// StockService is the only code path permitted to mutate a variant's
// stock quantity. Every adjustment runs "load variant, apply delta,
// reject if negative, save with version check, append ledger entry" in
// one transaction: both writes land or neither does, and a rejected
// change never reaches the ledger.
type StockService struct {
	scope          txn.Scope
	ledgerRepo     inventory.LedgerRepository
	variantRepo    catalog.VariantRepository
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService. The ledger and variant
// repositories are used for reads outside transactional units.
func NewStockService(scope txn.Scope, variantRepo catalog.VariantRepository, ledgerRepo inventory.LedgerRepository) *StockService {
	return &StockService{
		scope:       scope,
		variantRepo: variantRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// SetEventPublisher sets the event publisher for post-commit events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Adjust applies one stock change to a variant in its own atomic unit.
// Concurrent adjustments against the same variant serialize through the
// variant's version: the later committer re-reads and re-applies, so it
// always observes the earlier committer's new quantity as its previous
// quantity. Adjustments against different variants never contend.
func (s *StockService) Adjust(ctx context.Context, cmd AdjustStockCommand) (*AdjustStockResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "adjust",
		telemetry.WithAttribute(telemetry.SpanAttrVariantID, cmd.VariantID),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, cmd.QuantityChange),
		telemetry.WithAttribute(telemetry.SpanAttrChangeType, string(cmd.ChangeType)),
	)
	defer span.End()

	if err := validateAdjustCommand(cmd); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *AdjustStockResult
	var lowStock *catalog.VariantLowStockEvent

	for attempt := 1; ; attempt++ {
		err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
			r, event, err := adjustWithRepos(ctx, repos, cmd)
			if err != nil {
				return err
			}
			result = r
			lowStock = event
			return nil
		})
		if err == nil {
			break
		}
		if isConcurrencyConflict(err) && attempt < maxAdjustAttempts {
			telemetry.AddEvent(span, "optimistic_lock_retry", "attempt", attempt)
			continue
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, "new_quantity", result.NewQuantity)

	if lowStock != nil && s.eventPublisher != nil {
		telemetry.AddEvent(span, "low_stock_detected", telemetry.SpanAttrSKU, result.SKU)
		// Publish after commit (errors are logged by the event bus, not propagated)
		_ = s.eventPublisher.Publish(ctx, lowStock)
	}

	return result, nil
}

// AdjustWithRepos runs the stock adjustment against caller-provided
// transactional repositories, so composite operations (POS sales, return
// receipts, payment confirmation) fold stock changes into their own
// atomic units while keeping this the single mutation path.
func (s *StockService) AdjustWithRepos(ctx context.Context, repos txn.Repositories, cmd AdjustStockCommand) (*AdjustStockResult, error) {
	if err := validateAdjustCommand(cmd); err != nil {
		return nil, err
	}
	result, _, err := adjustWithRepos(ctx, repos, cmd)
	return result, err
}

func adjustWithRepos(ctx context.Context, repos txn.Repositories, cmd AdjustStockCommand) (*AdjustStockResult, *catalog.VariantLowStockEvent, error) {
	variant, err := repos.Variants().FindByID(ctx, cmd.VariantID)
	if err != nil {
		return nil, nil, err
	}
	if variant == nil {
		return nil, nil, shared.ErrNotFound
	}

	previousQuantity := variant.StockQuantity

	if err := variant.ApplyStockChange(cmd.QuantityChange); err != nil {
		return nil, nil, err
	}

	if err := repos.Variants().SaveWithLock(ctx, variant); err != nil {
		return nil, nil, err
	}

	entry, err := inventory.NewLedgerEntry(
		variant.ID,
		cmd.ChangeType,
		cmd.QuantityChange,
		previousQuantity,
		cmd.Reason,
		cmd.PerformedBy,
	)
	if err != nil {
		return nil, nil, err
	}
	if cmd.OrderID != nil {
		entry.WithOrderID(*cmd.OrderID)
	}

	if err := repos.Ledger().Create(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	var lowStock *catalog.VariantLowStockEvent
	if variant.IsBelowThreshold() {
		lowStock = catalog.NewVariantLowStockEvent(variant)
	}

	return &AdjustStockResult{
		VariantID:     variant.ID,
		SKU:           variant.SKU,
		NewQuantity:   variant.StockQuantity,
		LedgerEntryID: entry.ID,
	}, lowStock, nil
}

// VerifyLedger compares a variant's materialized quantity against the
// ledger's running sum. Drift indicates a write bypassed the adjustment
// path and warrants operator attention.
func (s *StockService) VerifyLedger(ctx context.Context, variantID uuid.UUID) (*LedgerVerification, error) {
	variant, err := s.variantRepo.FindByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, shared.ErrNotFound
	}

	sum, err := s.ledgerRepo.SumQuantityChange(ctx, variantID)
	if err != nil {
		return nil, err
	}

	return &LedgerVerification{
		VariantID:            variant.ID,
		SKU:                  variant.SKU,
		MaterializedQuantity: variant.StockQuantity,
		LedgerSum:            sum,
		Consistent:           variant.StockQuantity == sum,
	}, nil
}

// GetEntry returns one ledger entry
func (s *StockService) GetEntry(ctx context.Context, id uuid.UUID) (*LedgerEntryDTO, error) {
	entry, err := s.ledgerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, shared.ErrNotFound
	}
	dto := ToLedgerEntryDTO(entry)
	return &dto, nil
}

// ListLedger returns ledger entries, newest first
func (s *StockService) ListLedger(ctx context.Context, filter shared.Filter) ([]LedgerEntryDTO, int64, error) {
	entries, err := s.ledgerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ledgerRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]LedgerEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = ToLedgerEntryDTO(&entries[i])
	}
	return dtos, total, nil
}

// ListLedgerByVariant returns a variant's ledger entries, newest first
func (s *StockService) ListLedgerByVariant(ctx context.Context, variantID uuid.UUID, filter shared.Filter) ([]LedgerEntryDTO, int64, error) {
	entries, err := s.ledgerRepo.FindByVariant(ctx, variantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ledgerRepo.CountByVariant(ctx, variantID)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]LedgerEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = ToLedgerEntryDTO(&entries[i])
	}
	return dtos, total, nil
}

func validateAdjustCommand(cmd AdjustStockCommand) error {
	if cmd.VariantID == uuid.Nil {
		return shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if cmd.QuantityChange == 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	if !cmd.ChangeType.IsValid() {
		return shared.NewDomainError("INVALID_CHANGE_TYPE", "Invalid stock change type")
	}
	if cmd.PerformedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Performed-by actor cannot be empty")
	}
	return nil
}

func isConcurrencyConflict(err error) bool {
	return shared.HasCode(err, shared.ErrConcurrencyConflict.Code)
}
