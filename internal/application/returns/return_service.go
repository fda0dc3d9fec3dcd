package returns

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/storecore/backend/internal/application/inventory"
	"github.com/storecore/backend/internal/application/txn"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/returns"
	"github.com/storecore/backend/internal/domain/shared"
)

// ReturnService handles the RMA lifecycle. Receiving a return is the
// restock trigger: the status flip and the re-credit of restockable items
// commit in one transactional unit, and the status guard makes the
// re-credit exactly-once.
type ReturnService struct {
	scope          txn.Scope
	returnRepo     returns.Repository
	stockService   *appinventory.StockService
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewReturnService creates a new ReturnService
func NewReturnService(scope txn.Scope, returnRepo returns.Repository, stockService *appinventory.StockService, logger *zap.Logger) *ReturnService {
	return &ReturnService{
		scope:        scope,
		returnRepo:   returnRepo,
		stockService: stockService,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for post-commit events
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateReturn raises a return against a delivered order. Every item must
// reference an order item of that order, and the requested quantity may not
// exceed what was purchased minus what earlier non-rejected returns already
// cover.
func (s *ReturnService) CreateReturn(ctx context.Context, cmd CreateReturnCommand) (*ReturnResponse, error) {
	if len(cmd.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Return must contain at least one item")
	}
	if cmd.RequestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Requesting actor cannot be empty")
	}

	var created *returns.Return
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		o, err := repos.Orders().FindByID(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return shared.ErrNotFound
		}
		if !o.IsDelivered() {
			return shared.NewDomainError("ORDER_NOT_DELIVERED", "Only delivered orders can be returned")
		}
		if o.CustomerID != nil && cmd.CustomerID != nil && *o.CustomerID != *cmd.CustomerID {
			return shared.NewDomainError("VALIDATION", "Return customer does not match the order")
		}

		returned, err := quantitiesAlreadyReturned(ctx, repos, o.ID)
		if err != nil {
			return err
		}

		rmaNumber, err := repos.Returns().GenerateRMANumber(ctx)
		if err != nil {
			return err
		}

		ret, err := returns.NewReturn(rmaNumber, o.ID, o.CustomerID, cmd.Reason, cmd.Description, cmd.RequestedBy)
		if err != nil {
			return err
		}

		for _, line := range cmd.Items {
			orderItem := o.FindItem(line.OrderItemID)
			if orderItem == nil {
				return shared.NewDomainError("INVALID_ORDER_ITEM",
					fmt.Sprintf("Order item %s does not belong to order %s", line.OrderItemID, o.OrderNumber))
			}

			remaining := orderItem.Quantity - returned[orderItem.ID]
			if line.Quantity > remaining {
				return shared.NewDomainError("INVALID_QUANTITY",
					fmt.Sprintf("Cannot return %d of %s: only %d unreturned", line.Quantity, orderItem.SKU, remaining))
			}

			item, err := returns.NewReturnItem(
				orderItem.ID,
				orderItem.VariantID,
				line.Quantity,
				returns.ItemCondition(line.Condition),
				line.Restockable,
			)
			if err != nil {
				return err
			}
			if err := ret.AddItem(item); err != nil {
				return err
			}
		}

		if err := repos.Returns().Save(ctx, ret); err != nil {
			return err
		}
		created = ret
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, created)
	return ToReturnResponse(created), nil
}

// quantitiesAlreadyReturned sums per order item the quantities covered by
// the order's non-rejected returns.
func quantitiesAlreadyReturned(ctx context.Context, repos txn.Repositories, orderID uuid.UUID) (map[uuid.UUID]int, error) {
	existing, err := repos.Returns().FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	covered := make(map[uuid.UUID]int)
	for i := range existing {
		if existing[i].Status == returns.StatusRejected {
			continue
		}
		for _, item := range existing[i].Items {
			covered[item.OrderItemID] += item.Quantity
		}
	}
	return covered, nil
}

// TransitionReturn routes a target status to the matching aggregate
// operation, stamping the acting staff member.
func (s *ReturnService) TransitionReturn(ctx context.Context, returnID uuid.UUID, cmd TransitionReturnCommand) (*ReturnResponse, error) {
	target := returns.Status(cmd.Target)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown target status")
	}
	if cmd.Actor == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Acting staff member is required")
	}

	switch target {
	case returns.StatusApproved:
		return s.transition(ctx, returnID, func(r *returns.Return) error { return r.Approve(cmd.Actor) })
	case returns.StatusRejected:
		return s.transition(ctx, returnID, func(r *returns.Return) error { return r.Reject(cmd.Actor, cmd.Reason) })
	case returns.StatusReceived:
		return s.MarkReceived(ctx, returnID, cmd.Actor)
	case returns.StatusRefunded:
		return s.transition(ctx, returnID, func(r *returns.Return) error { return r.MarkRefunded() })
	case returns.StatusCompleted:
		return s.transition(ctx, returnID, func(r *returns.Return) error { return r.Complete() })
	}
	return nil, shared.NewDomainError("INVALID_STATE_TRANSITION",
		fmt.Sprintf("Cannot transition to %s directly", target))
}

// MarkReceived flips the return to RECEIVED and re-credits every
// restockable item in the same transactional unit. The status guard on the
// aggregate makes a replay fail before any ledger write, so the restock is
// exactly-once.
func (s *ReturnService) MarkReceived(ctx context.Context, returnID uuid.UUID, actor uuid.UUID) (*ReturnResponse, error) {
	var received *returns.Return

	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		ret, err := repos.Returns().FindByID(ctx, returnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return shared.ErrNotFound
		}

		if err := ret.MarkReceived(actor); err != nil {
			return err
		}
		if err := repos.Returns().SaveWithLock(ctx, ret); err != nil {
			return err
		}

		for _, item := range ret.RestockableItems() {
			_, err := s.stockService.AdjustWithRepos(ctx, repos, appinventory.AdjustStockCommand{
				VariantID:      item.VariantID,
				QuantityChange: item.Quantity,
				ChangeType:     inventory.ChangeTypeReturn,
				Reason:         fmt.Sprintf("Return %s received", ret.RMANumber),
				PerformedBy:    actor,
				OrderID:        &ret.OrderID,
			})
			if err != nil {
				return err
			}
		}

		received = ret
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, received)
	return ToReturnResponse(received), nil
}

// GetByID returns a return by ID
func (s *ReturnService) GetByID(ctx context.Context, id uuid.UUID) (*ReturnResponse, error) {
	ret, err := s.returnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, shared.ErrNotFound
	}
	return ToReturnResponse(ret), nil
}

// GetByRMANumber returns a return by its unique RMA number
func (s *ReturnService) GetByRMANumber(ctx context.Context, rmaNumber string) (*ReturnResponse, error) {
	ret, err := s.returnRepo.FindByRMANumber(ctx, rmaNumber)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, shared.ErrNotFound
	}
	return ToReturnResponse(ret), nil
}

// List returns returns with filtering and pagination
func (s *ReturnService) List(ctx context.Context, status *string, filter shared.Filter) ([]ReturnResponse, int64, error) {
	var results []returns.Return
	var err error
	if status != nil {
		target := returns.Status(*status)
		if !target.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid return status filter")
		}
		results, err = s.returnRepo.FindByStatus(ctx, target, filter)
	} else {
		results, err = s.returnRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, 0, err
	}
	total, err := s.returnRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ReturnResponse, len(results))
	for i := range results {
		responses[i] = *ToReturnResponse(&results[i])
	}
	return responses, total, nil
}

// transition runs one aggregate operation inside a transactional unit
func (s *ReturnService) transition(ctx context.Context, returnID uuid.UUID, op func(*returns.Return) error) (*ReturnResponse, error) {
	var updated *returns.Return

	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		ret, err := repos.Returns().FindByID(ctx, returnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return shared.ErrNotFound
		}

		if err := op(ret); err != nil {
			return err
		}
		if err := repos.Returns().SaveWithLock(ctx, ret); err != nil {
			return err
		}
		updated = ret
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, updated)
	return ToReturnResponse(updated), nil
}

func (s *ReturnService) publishEvents(ctx context.Context, r *returns.Return) {
	if s.eventPublisher == nil || r == nil {
		return
	}
	events := r.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	r.ClearDomainEvents()
}
