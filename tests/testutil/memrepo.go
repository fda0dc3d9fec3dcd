// Package testutil provides common test utilities for the storecore backend.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storecore/backend/internal/application/txn"
	"github.com/storecore/backend/internal/domain/catalog"
	"github.com/storecore/backend/internal/domain/inventory"
	"github.com/storecore/backend/internal/domain/order"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/domain/returns"
	"github.com/storecore/backend/internal/domain/shared"
)

// MemStore backs the in-memory repository fakes used by application-service
// tests. Reads return copies and writes store copies, so aggregates held by
// the test never alias stored state, and SaveWithLock enforces the same
// version check the real repositories do.
type MemStore struct {
	mu           sync.Mutex
	products     map[uuid.UUID]*catalog.Product
	variants     map[uuid.UUID]*catalog.ProductVariant
	ledger       []*inventory.LedgerEntry
	orders       map[uuid.UUID]*order.Order
	shipments    map[uuid.UUID]*order.Shipment
	transactions map[uuid.UUID]*payment.Transaction
	returns      map[uuid.UUID]*returns.Return
	orderSeq     int
	rmaSeq       int

	variantSaveConflicts int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		products:     make(map[uuid.UUID]*catalog.Product),
		variants:     make(map[uuid.UUID]*catalog.ProductVariant),
		orders:       make(map[uuid.UUID]*order.Order),
		shipments:    make(map[uuid.UUID]*order.Shipment),
		transactions: make(map[uuid.UUID]*payment.Transaction),
		returns:      make(map[uuid.UUID]*returns.Return),
	}
}

// Scope returns a no-op transactional scope over the store's repositories.
func (s *MemStore) Scope() *txn.NoOpScope {
	return &txn.NoOpScope{
		ProductRepo:     &MemProductRepository{store: s},
		VariantRepo:     &MemVariantRepository{store: s},
		LedgerRepo:      &MemLedgerRepository{store: s},
		OrderRepo:       &MemOrderRepository{store: s},
		ShipmentRepo:    &MemShipmentRepository{store: s},
		TransactionRepo: &MemTransactionRepository{store: s},
		ReturnRepo:      &MemReturnRepository{store: s},
	}
}

// FailNextVariantSaves makes the next n variant SaveWithLock calls return
// CONCURRENCY_CONFLICT, simulating a concurrent writer.
func (s *MemStore) FailNextVariantSaves(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variantSaveConflicts = n
}

// SeedProduct stores a product directly.
func (s *MemStore) SeedProduct(p *catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

// SeedVariant stores a variant directly.
func (s *MemStore) SeedVariant(v *catalog.ProductVariant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.variants[v.ID] = &cp
}

// SeedOrder stores an order directly.
func (s *MemStore) SeedOrder(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = copyOrder(o)
}

// SeedTransaction stores a payment transaction directly.
func (s *MemStore) SeedTransaction(tx *payment.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.transactions[tx.ID] = &cp
}

// SeedReturn stores a return directly.
func (s *MemStore) SeedReturn(r *returns.Return) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.returns[r.ID] = copyReturn(r)
}

// LedgerEntries returns all stored ledger entries in insertion order.
func (s *MemStore) LedgerEntries() []inventory.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.LedgerEntry, len(s.ledger))
	for i, e := range s.ledger {
		out[i] = *e
	}
	return out
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = make([]order.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

func copyReturn(r *returns.Return) *returns.Return {
	cp := *r
	cp.Items = make([]returns.ReturnItem, len(r.Items))
	copy(cp.Items, r.Items)
	return &cp
}

// MemProductRepository is an in-memory catalog.ProductRepository.
type MemProductRepository struct {
	store *MemStore
}

func (r *MemProductRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemProductRepository) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]catalog.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		out = append(out, *p)
	}
	sortProducts(out)
	return out, nil
}

func (r *MemProductRepository) FindActive(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]catalog.Product, 0)
	for _, p := range r.store.products {
		if p.IsActive() {
			out = append(out, *p)
		}
	}
	sortProducts(out)
	return out, nil
}

func (r *MemProductRepository) Save(_ context.Context, p *catalog.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *MemProductRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.products)), nil
}

func sortProducts(products []catalog.Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

// MemVariantRepository is an in-memory catalog.VariantRepository.
type MemVariantRepository struct {
	store *MemStore
}

func (r *MemVariantRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.ProductVariant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	v, ok := r.store.variants[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *MemVariantRepository) FindBySKU(_ context.Context, sku string) (*catalog.ProductVariant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sku = strings.ToUpper(strings.TrimSpace(sku))
	for _, v := range r.store.variants {
		if v.SKU == sku {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemVariantRepository) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]catalog.ProductVariant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]catalog.ProductVariant, 0)
	for _, v := range r.store.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	sortVariants(out)
	return out, nil
}

func (r *MemVariantRepository) FindAll(_ context.Context, _ shared.Filter) ([]catalog.ProductVariant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]catalog.ProductVariant, 0, len(r.store.variants))
	for _, v := range r.store.variants {
		out = append(out, *v)
	}
	sortVariants(out)
	return out, nil
}

func (r *MemVariantRepository) FindBelowThreshold(_ context.Context, _ shared.Filter) ([]catalog.ProductVariant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]catalog.ProductVariant, 0)
	for _, v := range r.store.variants {
		if v.IsActive() && v.IsBelowThreshold() {
			out = append(out, *v)
		}
	}
	sortVariants(out)
	return out, nil
}

func (r *MemVariantRepository) Save(_ context.Context, v *catalog.ProductVariant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *v
	r.store.variants[v.ID] = &cp
	return nil
}

func (r *MemVariantRepository) SaveWithLock(_ context.Context, v *catalog.ProductVariant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.variantSaveConflicts > 0 {
		r.store.variantSaveConflicts--
		return shared.ErrConcurrencyConflict
	}
	stored, ok := r.store.variants[v.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != v.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *v
	r.store.variants[v.ID] = &cp
	return nil
}

func (r *MemVariantRepository) ExistsBySKU(_ context.Context, sku string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sku = strings.ToUpper(strings.TrimSpace(sku))
	for _, v := range r.store.variants {
		if v.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemVariantRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.variants)), nil
}

func sortVariants(variants []catalog.ProductVariant) {
	sort.Slice(variants, func(i, j int) bool {
		return variants[i].SKU < variants[j].SKU
	})
}

// MemLedgerRepository is an in-memory inventory.LedgerRepository.
// Append-only like the real one.
type MemLedgerRepository struct {
	store *MemStore
}

func (r *MemLedgerRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.ledger {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemLedgerRepository) FindByVariant(_ context.Context, variantID uuid.UUID, _ shared.Filter) ([]inventory.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]inventory.LedgerEntry, 0)
	for i := len(r.store.ledger) - 1; i >= 0; i-- {
		if r.store.ledger[i].VariantID == variantID {
			out = append(out, *r.store.ledger[i])
		}
	}
	return out, nil
}

func (r *MemLedgerRepository) FindByOrder(_ context.Context, orderID uuid.UUID) ([]inventory.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]inventory.LedgerEntry, 0)
	for _, e := range r.store.ledger {
		if e.OrderID != nil && *e.OrderID == orderID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *MemLedgerRepository) FindAll(_ context.Context, _ shared.Filter) ([]inventory.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]inventory.LedgerEntry, 0, len(r.store.ledger))
	for i := len(r.store.ledger) - 1; i >= 0; i-- {
		out = append(out, *r.store.ledger[i])
	}
	return out, nil
}

func (r *MemLedgerRepository) FindByDateRange(_ context.Context, start, end time.Time, _ shared.Filter) ([]inventory.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]inventory.LedgerEntry, 0)
	for _, e := range r.store.ledger {
		if !e.EntryDate.Before(start) && !e.EntryDate.After(end) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *MemLedgerRepository) Create(_ context.Context, entry *inventory.LedgerEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *entry
	r.store.ledger = append(r.store.ledger, &cp)
	return nil
}

func (r *MemLedgerRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.ledger)), nil
}

func (r *MemLedgerRepository) CountByVariant(_ context.Context, variantID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, e := range r.store.ledger {
		if e.VariantID == variantID {
			n++
		}
	}
	return n, nil
}

func (r *MemLedgerRepository) SumQuantityChange(_ context.Context, variantID uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sum := 0
	for _, e := range r.store.ledger {
		if e.VariantID == variantID {
			sum += e.QuantityChange
		}
	}
	return sum, nil
}

// MemOrderRepository is an in-memory order.Repository.
type MemOrderRepository struct {
	store *MemStore
}

func (r *MemOrderRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (r *MemOrderRepository) FindByOrderNumber(_ context.Context, orderNumber string) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.orders {
		if o.OrderNumber == orderNumber {
			return copyOrder(o), nil
		}
	}
	return nil, nil
}

func (r *MemOrderRepository) FindAll(_ context.Context, _ shared.Filter) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]order.Order, 0, len(r.store.orders))
	for _, o := range r.store.orders {
		out = append(out, *copyOrder(o))
	}
	sortOrders(out)
	return out, nil
}

func (r *MemOrderRepository) FindByCustomer(_ context.Context, customerID uuid.UUID, _ shared.Filter) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]order.Order, 0)
	for _, o := range r.store.orders {
		if o.CustomerID != nil && *o.CustomerID == customerID {
			out = append(out, *copyOrder(o))
		}
	}
	sortOrders(out)
	return out, nil
}

func (r *MemOrderRepository) FindByStatus(_ context.Context, status order.OrderStatus, _ shared.Filter) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]order.Order, 0)
	for _, o := range r.store.orders {
		if o.Status == status {
			out = append(out, *copyOrder(o))
		}
	}
	sortOrders(out)
	return out, nil
}

func (r *MemOrderRepository) Save(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *MemOrderRepository) SaveWithLock(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.orders[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != o.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.store.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *MemOrderRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.orders)), nil
}

func (r *MemOrderRepository) CountByStatus(_ context.Context) (map[order.OrderStatus]int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[order.OrderStatus]int64)
	for _, o := range r.store.orders {
		out[o.Status]++
	}
	return out, nil
}

func (r *MemOrderRepository) ExistsByOrderNumber(_ context.Context, orderNumber string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.orders {
		if o.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemOrderRepository) GenerateOrderNumber(_ context.Context) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orderSeq++
	return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102"), r.store.orderSeq), nil
}

func sortOrders(orders []order.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// MemShipmentRepository is an in-memory order.ShipmentRepository.
type MemShipmentRepository struct {
	store *MemStore
}

func (r *MemShipmentRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Shipment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.shipments[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *MemShipmentRepository) FindByOrder(_ context.Context, orderID uuid.UUID) (*order.Shipment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.shipments {
		if s.OrderID == orderID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemShipmentRepository) FindAll(_ context.Context, _ shared.Filter) ([]order.Shipment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]order.Shipment, 0, len(r.store.shipments))
	for _, s := range r.store.shipments {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemShipmentRepository) Save(_ context.Context, s *order.Shipment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.shipments {
		if existing.OrderID == s.OrderID && existing.ID != s.ID {
			return shared.NewDomainError("SHIPMENT_EXISTS", "Order already has a shipment")
		}
	}
	cp := *s
	r.store.shipments[s.ID] = &cp
	return nil
}

func (r *MemShipmentRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.shipments)), nil
}

// MemTransactionRepository is an in-memory payment.Repository.
type MemTransactionRepository struct {
	store *MemStore
}

func (r *MemTransactionRepository) FindByID(_ context.Context, id uuid.UUID) (*payment.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tx, ok := r.store.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (r *MemTransactionRepository) FindByReference(_ context.Context, reference string) (*payment.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, tx := range r.store.transactions {
		if tx.Reference != "" && tx.Reference == reference {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemTransactionRepository) FindByOrder(_ context.Context, orderID uuid.UUID) ([]payment.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]payment.Transaction, 0)
	for _, tx := range r.store.transactions {
		if tx.OrderID == orderID {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemTransactionRepository) Save(_ context.Context, tx *payment.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *tx
	r.store.transactions[tx.ID] = &cp
	return nil
}

func (r *MemTransactionRepository) SaveWithLock(_ context.Context, tx *payment.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.transactions[tx.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != tx.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *tx
	r.store.transactions[tx.ID] = &cp
	return nil
}

func (r *MemTransactionRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.transactions)), nil
}

// MemReturnRepository is an in-memory returns.Repository.
type MemReturnRepository struct {
	store *MemStore
}

func (r *MemReturnRepository) FindByID(_ context.Context, id uuid.UUID) (*returns.Return, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ret, ok := r.store.returns[id]
	if !ok {
		return nil, nil
	}
	return copyReturn(ret), nil
}

func (r *MemReturnRepository) FindByRMANumber(_ context.Context, rmaNumber string) (*returns.Return, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, ret := range r.store.returns {
		if ret.RMANumber == rmaNumber {
			return copyReturn(ret), nil
		}
	}
	return nil, nil
}

func (r *MemReturnRepository) FindByOrder(_ context.Context, orderID uuid.UUID) ([]returns.Return, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]returns.Return, 0)
	for _, ret := range r.store.returns {
		if ret.OrderID == orderID {
			out = append(out, *copyReturn(ret))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemReturnRepository) FindAll(_ context.Context, _ shared.Filter) ([]returns.Return, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]returns.Return, 0, len(r.store.returns))
	for _, ret := range r.store.returns {
		out = append(out, *copyReturn(ret))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemReturnRepository) FindByStatus(_ context.Context, status returns.Status, _ shared.Filter) ([]returns.Return, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]returns.Return, 0)
	for _, ret := range r.store.returns {
		if ret.Status == status {
			out = append(out, *copyReturn(ret))
		}
	}
	return out, nil
}

func (r *MemReturnRepository) Save(_ context.Context, ret *returns.Return) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.returns[ret.ID] = copyReturn(ret)
	return nil
}

func (r *MemReturnRepository) SaveWithLock(_ context.Context, ret *returns.Return) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.returns[ret.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != ret.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.store.returns[ret.ID] = copyReturn(ret)
	return nil
}

func (r *MemReturnRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.returns)), nil
}

func (r *MemReturnRepository) ExistsByRMANumber(_ context.Context, rmaNumber string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, ret := range r.store.returns {
		if ret.RMANumber == rmaNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemReturnRepository) GenerateRMANumber(_ context.Context) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.rmaSeq++
	return fmt.Sprintf("RMA-%s-%04d", time.Now().Format("20060102"), r.store.rmaSeq), nil
}
