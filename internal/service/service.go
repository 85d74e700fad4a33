package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"warungpos/backend/internal/cache"
	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/policy"
	"warungpos/backend/internal/restock"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

const dayFormat = "2006-01-02"

type Service struct {
	repo         store.Repository
	restocker    *restock.Engine
	summaryCache cache.SummaryCache
	summaryTTL   time.Duration
}

func New(repo store.Repository, restocker *restock.Engine, summaryCache cache.SummaryCache, summaryTTL time.Duration) *Service {
	if summaryCache == nil {
		summaryCache = cache.NoopCache{}
	}
	if summaryTTL <= 0 {
		summaryTTL = 20 * time.Second
	}

	return &Service{
		repo:         repo,
		restocker:    restocker,
		summaryCache: summaryCache,
		summaryTTL:   summaryTTL,
	}
}

func (s *Service) ListRawMaterials(ctx context.Context, actor domain.Actor, includeDeleted bool) ([]domain.RawMaterial, error) {
	if includeDeleted && !policy.IsOwner(actor) {
		return nil, &store.AuthorizationError{Reason: "owner role required to view deleted materials"}
	}
	return s.repo.ListRawMaterials(ctx, includeDeleted)
}

func (s *Service) CreateRawMaterial(ctx context.Context, actor domain.Actor, req domain.RawMaterialCreateRequest) (domain.RawMaterial, error) {
	if !policy.CanMutateCatalog(actor) {
		return domain.RawMaterial{}, &store.AuthorizationError{Reason: "owner role required"}
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Name == "" {
		return domain.RawMaterial{}, &store.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if req.Unit == "" {
		return domain.RawMaterial{}, &store.ValidationError{Field: "unit", Message: "must not be empty"}
	}
	if req.SellPrice < 0 || req.PurchasePrice < 0 {
		return domain.RawMaterial{}, &store.ValidationError{Field: "price", Message: "must not be negative"}
	}
	if req.Stock < 0 {
		return domain.RawMaterial{}, &store.ValidationError{Field: "stock", Message: "must not be negative"}
	}

	created, err := s.repo.CreateRawMaterial(ctx, domain.RawMaterial{
		Name:          req.Name,
		Unit:          req.Unit,
		SellPrice:     req.SellPrice,
		PurchasePrice: req.PurchasePrice,
		Stock:         req.Stock,
	})
	if err != nil {
		return domain.RawMaterial{}, err
	}

	s.logAudit(ctx, actor, "raw_material_create", "raw_material", created.ID, fmt.Sprintf("name=%s,stock=%d", created.Name, created.Stock))
	return *created, nil
}

func (s *Service) UpdateRawMaterial(ctx context.Context, actor domain.Actor, id string, req domain.RawMaterialUpdateRequest) (domain.RawMaterial, error) {
	if !policy.CanMutateCatalog(actor) {
		return domain.RawMaterial{}, &store.AuthorizationError{Reason: "owner role required"}
	}

	existing, err := s.repo.GetRawMaterial(ctx, id)
	if err != nil {
		return domain.RawMaterial{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.RawMaterial{}, &store.ValidationError{Field: "name", Message: "must not be empty"}
		}
		existing.Name = name
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return domain.RawMaterial{}, &store.ValidationError{Field: "unit", Message: "must not be empty"}
		}
		existing.Unit = unit
	}
	if req.SellPrice != nil {
		if *req.SellPrice < 0 {
			return domain.RawMaterial{}, &store.ValidationError{Field: "sell_price", Message: "must not be negative"}
		}
		existing.SellPrice = *req.SellPrice
	}
	if req.PurchasePrice != nil {
		if *req.PurchasePrice < 0 {
			return domain.RawMaterial{}, &store.ValidationError{Field: "purchase_price", Message: "must not be negative"}
		}
		existing.PurchasePrice = *req.PurchasePrice
	}

	updated, err := s.repo.UpdateRawMaterial(ctx, *existing)
	if err != nil {
		return domain.RawMaterial{}, err
	}

	s.logAudit(ctx, actor, "raw_material_update", "raw_material", updated.ID, "name="+updated.Name)
	return *updated, nil
}

// DeleteRawMaterial tombstones a material. Materials referenced by a pending
// or approved material order are kept alive so delivery can still reconcile
// their stock.
func (s *Service) DeleteRawMaterial(ctx context.Context, actor domain.Actor, id string) error {
	if !policy.CanMutateCatalog(actor) {
		return &store.AuthorizationError{Reason: "owner role required"}
	}

	if _, err := s.repo.GetRawMaterial(ctx, id); err != nil {
		return err
	}
	open, err := s.repo.MaterialHasOpenOrders(ctx, id)
	if err != nil {
		return err
	}
	if open {
		return &store.InvalidStateError{Current: "referenced by open material orders", Attempted: "delete material"}
	}

	if err := s.repo.SoftDeleteRawMaterial(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	s.logAudit(ctx, actor, "raw_material_delete", "raw_material", id, "")
	return nil
}

func (s *Service) AdjustRawMaterialStock(ctx context.Context, actor domain.Actor, id string, req domain.StockAdjustRequest) (domain.RawMaterial, error) {
	if !policy.CanMutateCatalog(actor) {
		return domain.RawMaterial{}, &store.AuthorizationError{Reason: "owner role required"}
	}
	if req.Delta == 0 {
		return domain.RawMaterial{}, &store.ValidationError{Field: "delta", Message: "must not be zero"}
	}

	adjusted, err := s.repo.AdjustRawMaterialStock(ctx, id, req.Delta)
	if err != nil {
		return domain.RawMaterial{}, err
	}

	s.logAudit(ctx, actor, "raw_material_adjust_stock", "raw_material", id, fmt.Sprintf("delta=%d,reason=%s", req.Delta, strings.TrimSpace(req.Reason)))
	return *adjusted, nil
}

// ImportRawMaterials inserts spreadsheet rows as new materials. Duplicate
// detection is a single pass over a seen-set keyed on the normalized name,
// covering both in-file duplicates and materials already in the catalog
// (tombstoned ones included, so a re-import cannot resurrect a name).
func (s *Service) ImportRawMaterials(ctx context.Context, actor domain.Actor, rows []domain.RawMaterialImportRow) (domain.ImportResult, error) {
	if !policy.CanMutateCatalog(actor) {
		return domain.ImportResult{}, &store.AuthorizationError{Reason: "owner role required"}
	}
	if len(rows) == 0 {
		return domain.ImportResult{}, &store.ValidationError{Field: "rows", Message: "no data rows found"}
	}

	existing, err := s.repo.ListRawMaterials(ctx, true)
	if err != nil {
		return domain.ImportResult{}, err
	}
	seen := make(map[string]struct{}, len(existing)+len(rows))
	for _, m := range existing {
		seen[normalizeName(m.Name)] = struct{}{}
	}

	result := domain.ImportResult{}
	batch := make([]domain.RawMaterial, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		unit := strings.TrimSpace(row.Unit)

		var rowErr string
		switch {
		case name == "":
			rowErr = "name must not be empty"
		case unit == "":
			rowErr = "unit must not be empty"
		case row.SellPrice < 0 || row.PurchasePrice < 0:
			rowErr = "prices must not be negative"
		case row.Stock < 0:
			rowErr = "stock must not be negative"
		}
		if rowErr == "" {
			if _, dup := seen[normalizeName(name)]; dup {
				rowErr = "duplicate material name: " + name
			}
		}
		if rowErr != "" {
			result.Skipped++
			result.Errors = append(result.Errors, domain.ImportRowError{RowNumber: row.RowNumber, Message: rowErr})
			continue
		}

		seen[normalizeName(name)] = struct{}{}
		batch = append(batch, domain.RawMaterial{
			Name:          name,
			Unit:          unit,
			SellPrice:     row.SellPrice,
			PurchasePrice: row.PurchasePrice,
			Stock:         row.Stock,
		})
	}

	if len(batch) > 0 {
		if err := s.repo.BulkInsertRawMaterials(ctx, batch); err != nil {
			return domain.ImportResult{}, err
		}
	}
	result.Imported = len(batch)

	s.logAudit(ctx, actor, "raw_material_import", "raw_material", "", fmt.Sprintf("imported=%d,skipped=%d", result.Imported, result.Skipped))
	return result, nil
}

func (s *Service) CreateMaterialOrder(ctx context.Context, actor domain.Actor, req domain.MaterialOrderCreateRequest) (domain.MaterialOrder, error) {
	req.OutletID = strings.TrimSpace(req.OutletID)
	if req.OutletID == "" {
		return domain.MaterialOrder{}, &store.ValidationError{Field: "outlet_id", Message: "must not be empty"}
	}
	if !policy.CanAccessOutlet(actor, req.OutletID) {
		return domain.MaterialOrder{}, &store.AuthorizationError{Reason: "actor is not scoped to outlet " + req.OutletID}
	}
	if _, err := s.repo.GetOutlet(ctx, req.OutletID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.MaterialOrder{}, &store.ValidationError{Field: "outlet_id", Message: "unknown outlet"}
		}
		return domain.MaterialOrder{}, err
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return domain.MaterialOrder{}, &store.ValidationError{Field: "payment_method", Message: "unknown payment method"}
	}

	items, total, err := s.buildOrderItems(ctx, req.Items)
	if err != nil {
		return domain.MaterialOrder{}, err
	}

	created, err := s.repo.CreateMaterialOrder(ctx, domain.MaterialOrder{
		OutletID:      req.OutletID,
		RequestedBy:   actor.Username,
		Status:        domain.MaterialOrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   total,
		Notes:         strings.TrimSpace(req.Notes),
		Items:         items,
	})
	if err != nil {
		return domain.MaterialOrder{}, err
	}

	s.logAudit(ctx, actor, "material_order_create", "material_order", created.ID, fmt.Sprintf("outlet=%s,total=%d,items=%d", created.OutletID, created.TotalAmount, len(created.Items)))
	return *created, nil
}

func (s *Service) GetMaterialOrder(ctx context.Context, actor domain.Actor, orderID string) (domain.MaterialOrder, error) {
	order, err := s.repo.GetMaterialOrder(ctx, orderID)
	if err != nil {
		return domain.MaterialOrder{}, err
	}
	if !policy.CanAccessOutlet(actor, order.OutletID) {
		return domain.MaterialOrder{}, &store.AuthorizationError{Reason: "actor is not scoped to outlet " + order.OutletID}
	}
	return *order, nil
}

func (s *Service) ListMaterialOrders(ctx context.Context, actor domain.Actor, filter store.MaterialOrderFilter) ([]domain.MaterialOrder, error) {
	if !policy.IsOwner(actor) {
		filter.OutletID = actor.OutletID
	}
	return s.repo.ListMaterialOrders(ctx, filter)
}

// UpdateMaterialOrder replaces the entire item set of a pending order
// (delete-then-recreate, not an incremental diff) and recomputes the total.
// Prices are snapshotted again at edit time since the items are new.
func (s *Service) UpdateMaterialOrder(ctx context.Context, actor domain.Actor, orderID string, req domain.MaterialOrderUpdateRequest) (domain.MaterialOrder, error) {
	order, err := s.repo.GetMaterialOrder(ctx, orderID)
	if err != nil {
		return domain.MaterialOrder{}, err
	}
	if !policy.CanAccessOutlet(actor, order.OutletID) {
		return domain.MaterialOrder{}, &store.AuthorizationError{Reason: "actor is not scoped to outlet " + order.OutletID}
	}
	if order.Status != domain.MaterialOrderStatusPending {
		return domain.MaterialOrder{}, &store.InvalidStateError{Current: order.Status, Attempted: "edit order"}
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return domain.MaterialOrder{}, &store.ValidationError{Field: "payment_method", Message: "unknown payment method"}
	}

	items, total, err := s.buildOrderItems(ctx, req.Items)
	if err != nil {
		return domain.MaterialOrder{}, err
	}

	updated, err := s.repo.ReplaceMaterialOrderItems(ctx, orderID, domain.MaterialOrder{
		PaymentMethod: req.PaymentMethod,
		Notes:         strings.TrimSpace(req.Notes),
		TotalAmount:   total,
		Items:         items,
	})
	if err != nil {
		return domain.MaterialOrder{}, err
	}

	s.logAudit(ctx, actor, "material_order_update", "material_order", orderID, fmt.Sprintf("total=%d,items=%d", updated.TotalAmount, len(updated.Items)))
	return *updated, nil
}

// TransitionMaterialOrder advances an order along pending -> approved ->
// delivered. Approval stamps approved_at with no stock effect; delivery
// decrements each item's material stock together with the status change as
// one atomic unit, or not at all.
func (s *Service) TransitionMaterialOrder(ctx context.Context, actor domain.Actor, orderID string, target string) (domain.MaterialOrder, error) {
	if !policy.IsOwner(actor) {
		return domain.MaterialOrder{}, &store.AuthorizationError{Reason: "owner role required"}
	}

	now := time.Now().UTC()
	var (
		order *domain.MaterialOrder
		err   error
	)
	switch target {
	case domain.MaterialOrderStatusApproved:
		order, err = s.repo.ApproveMaterialOrder(ctx, orderID, now)
	case domain.MaterialOrderStatusDelivered:
		order, err = s.repo.DeliverMaterialOrder(ctx, orderID, now)
	default:
		return domain.MaterialOrder{}, &store.ValidationError{Field: "status", Message: "target must be approved or delivered"}
	}
	if err != nil {
		return domain.MaterialOrder{}, err
	}

	s.logAudit(ctx, actor, "material_order_"+target, "material_order", orderID, fmt.Sprintf("outlet=%s,total=%d", order.OutletID, order.TotalAmount))
	return *order, nil
}

// CancelMaterialOrder deletes a pending order and its items. Stock is never
// touched: nothing was decremented at the pending or approved stages.
func (s *Service) CancelMaterialOrder(ctx context.Context, actor domain.Actor, orderID string) error {
	order, err := s.repo.GetMaterialOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !policy.IsOwner(actor) && actor.Username != order.RequestedBy {
		return &store.AuthorizationError{Reason: "only the owner or the original requester may cancel"}
	}

	if err := s.repo.DeleteMaterialOrder(ctx, orderID); err != nil {
		return err
	}
	s.logAudit(ctx, actor, "material_order_cancel", "material_order", orderID, "outlet="+order.OutletID)
	return nil
}

// buildOrderItems validates requested lines and snapshots each material's
// current purchase price. Lines naming the same material are merged by
// summing quantities, preserving first-seen order.
func (s *Service) buildOrderItems(ctx context.Context, lines []domain.MaterialOrderLine) ([]domain.MaterialOrderItem, int64, error) {
	if len(lines) == 0 {
		return nil, 0, &store.ValidationError{Field: "items", Message: "must not be empty"}
	}

	merged := make([]domain.MaterialOrderLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for i, line := range lines {
		materialID := strings.TrimSpace(line.MaterialID)
		if materialID == "" {
			return nil, 0, &store.ValidationError{Field: fmt.Sprintf("items[%d].material_id", i), Message: "must not be empty"}
		}
		if line.Quantity < 1 {
			return nil, 0, &store.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be at least 1"}
		}
		if at, ok := index[materialID]; ok {
			merged[at].Quantity += line.Quantity
			continue
		}
		index[materialID] = len(merged)
		merged = append(merged, domain.MaterialOrderLine{MaterialID: materialID, Quantity: line.Quantity})
	}

	ids := make([]string, 0, len(merged))
	for _, line := range merged {
		ids = append(ids, line.MaterialID)
	}
	materials, err := s.repo.GetRawMaterialsByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	items := make([]domain.MaterialOrderItem, 0, len(merged))
	var total int64
	for _, line := range merged {
		material, ok := materials[line.MaterialID]
		if !ok || !material.Active {
			return nil, 0, &store.ValidationError{Field: "items.material_id", Message: "unknown raw material: " + line.MaterialID}
		}
		subtotal := line.Quantity * material.PurchasePrice
		items = append(items, domain.MaterialOrderItem{
			MaterialID:   material.ID,
			MaterialName: material.Name,
			Quantity:     line.Quantity,
			PricePerUnit: material.PurchasePrice,
			Subtotal:     subtotal,
		})
		total += subtotal
	}
	return items, total, nil
}

func (s *Service) Checkout(ctx context.Context, actor domain.Actor, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	if !policy.CanCheckout(actor) {
		return domain.CheckoutResponse{}, &store.AuthorizationError{Reason: "unknown role " + actor.Role}
	}
	req.OutletID = strings.TrimSpace(req.OutletID)
	if req.OutletID == "" {
		return domain.CheckoutResponse{}, &store.ValidationError{Field: "outlet_id", Message: "must not be empty"}
	}
	if !policy.CanAccessOutlet(actor, req.OutletID) {
		return domain.CheckoutResponse{}, &store.AuthorizationError{Reason: "actor is not scoped to outlet " + req.OutletID}
	}
	if req.OrderType != domain.OrderTypeDineIn && req.OrderType != domain.OrderTypeTakeAway {
		return domain.CheckoutResponse{}, &store.ValidationError{Field: "order_type", Message: "must be dine_in or take_away"}
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return domain.CheckoutResponse{}, &store.ValidationError{Field: "payment_method", Message: "unknown payment method"}
	}
	if len(req.Items) == 0 {
		return domain.CheckoutResponse{}, &store.ValidationError{Field: "items", Message: "must not be empty"}
	}
	if req.Discount < 0 || req.ServiceCharge < 0 {
		return domain.CheckoutResponse{}, &store.ValidationError{Field: "discount", Message: "must not be negative"}
	}
	if req.TaxRatePercent < 0 || req.TaxRatePercent > 100 {
		return domain.CheckoutResponse{}, &store.ValidationError{Field: "tax_rate_percent", Message: "must be between 0 and 100"}
	}

	ids := make([]string, 0, len(req.Items))
	for i, line := range req.Items {
		if strings.TrimSpace(line.ProductID) == "" {
			return domain.CheckoutResponse{}, &store.ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "must not be empty"}
		}
		if line.Quantity < 1 {
			return domain.CheckoutResponse{}, &store.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be at least 1"}
		}
		ids = append(ids, strings.TrimSpace(line.ProductID))
	}
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	var subtotal int64
	for i, line := range req.Items {
		productID := strings.TrimSpace(line.ProductID)
		product, ok := products[productID]
		if !ok || !product.Active {
			return domain.CheckoutResponse{}, &store.ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "unknown product: " + productID}
		}
		lineTotal := line.Quantity * product.SellPrice
		items = append(items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Category:    product.Category,
			Quantity:    line.Quantity,
			UnitPrice:   product.SellPrice,
			LineTotal:   lineTotal,
		})
		subtotal += lineTotal
	}

	if req.Discount > subtotal {
		return domain.CheckoutResponse{}, &store.ValidationError{Field: "discount", Message: "must not exceed subtotal"}
	}
	tax := int64(math.Round(float64(subtotal-req.Discount) * req.TaxRatePercent / 100))
	total := subtotal - req.Discount + tax + req.ServiceCharge

	amountPaid := req.AmountPaid
	var change int64
	if req.PaymentMethod == domain.PaymentCash {
		if amountPaid < total {
			return domain.CheckoutResponse{}, &store.ValidationError{Field: "amount_paid", Message: "must cover the total for cash payments"}
		}
		change = amountPaid - total
	} else {
		amountPaid = total
	}

	created, err := s.repo.CreateOrder(ctx, domain.Order{
		OutletID:        req.OutletID,
		CashierUsername: actor.Username,
		OrderType:       req.OrderType,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        subtotal,
		Discount:        req.Discount,
		Tax:             tax,
		ServiceCharge:   req.ServiceCharge,
		Total:           total,
		AmountPaid:      amountPaid,
		ChangeDue:       change,
		TransactionTime: time.Now().UTC(),
		Items:           items,
	})
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	s.logAudit(ctx, actor, "checkout", "order", created.ID, fmt.Sprintf("outlet=%s,total=%d,method=%s", created.OutletID, created.Total, created.PaymentMethod))
	return domain.CheckoutResponse{Order: *created}, nil
}

func (s *Service) ListOrders(ctx context.Context, actor domain.Actor, filter store.OrderFilter) ([]domain.Order, error) {
	if !policy.IsOwner(actor) {
		filter.OutletID = actor.OutletID
	}
	return s.repo.ListOrders(ctx, filter)
}

func (s *Service) UpsertDailyCash(ctx context.Context, actor domain.Actor, req domain.DailyCashUpsertRequest) (domain.DailyCash, error) {
	req.OutletID = strings.TrimSpace(req.OutletID)
	if req.OutletID == "" {
		return domain.DailyCash{}, &store.ValidationError{Field: "outlet_id", Message: "must not be empty"}
	}
	if actor.Role == domain.RoleCashier {
		return domain.DailyCash{}, &store.AuthorizationError{Reason: "owner or manager role required"}
	}
	if !policy.CanAccessOutlet(actor, req.OutletID) {
		return domain.DailyCash{}, &store.AuthorizationError{Reason: "actor is not scoped to outlet " + req.OutletID}
	}
	day, err := parseDay(req.Date)
	if err != nil {
		return domain.DailyCash{}, &store.ValidationError{Field: "date", Message: "must be yyyy-mm-dd"}
	}
	if req.OpeningBalance < 0 || req.Expenses < 0 {
		return domain.DailyCash{}, &store.ValidationError{Field: "opening_balance", Message: "must not be negative"}
	}

	entry, err := s.repo.UpsertDailyCash(ctx, domain.DailyCash{
		OutletID:       req.OutletID,
		Date:           day,
		OpeningBalance: req.OpeningBalance,
		Expenses:       req.Expenses,
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return domain.DailyCash{}, err
	}

	s.logAudit(ctx, actor, "daily_cash_upsert", "daily_cash", entry.ID, fmt.Sprintf("outlet=%s,date=%s,opening=%d,expenses=%d", entry.OutletID, entry.Date.Format(dayFormat), entry.OpeningBalance, entry.Expenses))
	return *entry, nil
}

func (s *Service) CreateProduct(ctx context.Context, actor domain.Actor, req domain.ProductCreateRequest) (domain.Product, error) {
	if !policy.CanMutateCatalog(actor) {
		return domain.Product{}, &store.AuthorizationError{Reason: "owner role required"}
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if req.Name == "" || req.Category == "" {
		return domain.Product{}, &store.ValidationError{Field: "name", Message: "name and category must not be empty"}
	}
	if req.SellPrice < 1 {
		return domain.Product{}, &store.ValidationError{Field: "sell_price", Message: "must be positive"}
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:      req.Name,
		Category:  req.Category,
		SellPrice: req.SellPrice,
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.logAudit(ctx, actor, "product_create", "product", created.ID, "name="+created.Name)
	return *created, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateOutlet(ctx context.Context, actor domain.Actor, req domain.OutletCreateRequest) (domain.Outlet, error) {
	if !policy.CanMutateCatalog(actor) {
		return domain.Outlet{}, &store.AuthorizationError{Reason: "owner role required"}
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Outlet{}, &store.ValidationError{Field: "name", Message: "must not be empty"}
	}

	created, err := s.repo.CreateOutlet(ctx, domain.Outlet{
		Name:    req.Name,
		Address: strings.TrimSpace(req.Address),
	})
	if err != nil {
		return domain.Outlet{}, err
	}
	s.logAudit(ctx, actor, "outlet_create", "outlet", created.ID, "name="+created.Name)
	return *created, nil
}

func (s *Service) ListOutlets(ctx context.Context) ([]domain.Outlet, error) {
	return s.repo.ListOutlets(ctx)
}

// RestockSuggestions scores active materials against open material-order
// coverage and returns reorder advice. Purely advisory and read-only.
func (s *Service) RestockSuggestions(ctx context.Context, actor domain.Actor, req domain.RestockRequest) (domain.RestockResponse, error) {
	if actor.Role == domain.RoleCashier {
		return domain.RestockResponse{}, &store.AuthorizationError{Reason: "owner or manager role required"}
	}

	materials, err := s.repo.ListRawMaterials(ctx, false)
	if err != nil {
		return domain.RestockResponse{}, err
	}

	pendingQty := make(map[string]int64)
	for _, status := range []string{domain.MaterialOrderStatusPending, domain.MaterialOrderStatusApproved} {
		orders, err := s.repo.ListMaterialOrders(ctx, store.MaterialOrderFilter{Status: status})
		if err != nil {
			return domain.RestockResponse{}, err
		}
		for _, order := range orders {
			for _, item := range order.Items {
				pendingQty[item.MaterialID] += item.Quantity
			}
		}
	}

	return s.restocker.Suggest(ctx, req, materials, pendingQty), nil
}

func (s *Service) ListAuditLogs(ctx context.Context, actor domain.Actor, date string, limit int) ([]domain.AuditLog, error) {
	if !policy.IsOwner(actor) {
		return nil, &store.AuthorizationError{Reason: "owner role required"}
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	if date != "" {
		parsed, err := parseDay(date)
		if err != nil {
			return nil, &store.ValidationError{Field: "date", Message: "must be yyyy-mm-dd"}
		}
		day = parsed
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.repo.ListAuditLogs(ctx, day, day.AddDate(0, 0, 1), limit)
}

func (s *Service) logAudit(ctx context.Context, actor domain.Actor, action string, entityType string, entityID string, detail string) {
	if actor.Username == "" {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func validPaymentMethod(method string) bool {
	switch method {
	case domain.PaymentCash, domain.PaymentQris, domain.PaymentDebit, domain.PaymentTransfer:
		return true
	}
	return false
}

func parseDay(value string) (time.Time, error) {
	return time.ParseInLocation(dayFormat, strings.TrimSpace(value), time.UTC)
}
