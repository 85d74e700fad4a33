package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	materialsByID   map[string]domain.RawMaterial
	materialOrders  map[string]domain.MaterialOrder
	productsByID    map[string]domain.Product
	outletsByID     map[string]domain.Outlet
	ordersByID      map[string]domain.Order
	dailyCashByKey  map[string]domain.DailyCash
	usersByUsername map[string]domain.UserAccount
	auditLogs       []domain.AuditLog
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_OWNER_PASSWORD and SEED_CASHIER_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	ownerPwd := envOr("SEED_OWNER_PASSWORD", "owner123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_OWNER_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_OWNER_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
		outletID string
	}{
		{"owner", ownerPwd, domain.RoleOwner, ""},
		{"manager", cashierPwd, domain.RoleManager, "outlet-pusat"},
		{"cashier", cashierPwd, domain.RoleCashier, "outlet-pusat"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			OutletID:  u.outletID,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()

	outlets := []domain.Outlet{
		{ID: "outlet-pusat", Name: "Warung Pusat", Address: "Jl. Merdeka 1, Jakarta", Active: true, CreatedAt: now},
		{ID: "outlet-cabang", Name: "Warung Cabang Timur", Address: "Jl. Pahlawan 12, Bekasi", Active: true, CreatedAt: now},
	}

	materials := []domain.RawMaterial{
		{ID: "rm-kopi", Name: "Kopi Bubuk Robusta", Unit: "kg", SellPrice: 95000, PurchasePrice: 72000, Stock: 40, Active: true},
		{ID: "rm-gula", Name: "Gula Pasir", Unit: "kg", SellPrice: 18000, PurchasePrice: 14500, Stock: 80, Active: true},
		{ID: "rm-susu", Name: "Susu Kental Manis", Unit: "kaleng", SellPrice: 12500, PurchasePrice: 9800, Stock: 60, Active: true},
		{ID: "rm-teh", Name: "Teh Hitam Celup", Unit: "box", SellPrice: 11000, PurchasePrice: 8200, Stock: 50, Active: true},
		{ID: "rm-beras", Name: "Beras Premium", Unit: "kg", SellPrice: 16500, PurchasePrice: 13800, Stock: 120, Active: true},
		{ID: "rm-minyak", Name: "Minyak Goreng", Unit: "liter", SellPrice: 19000, PurchasePrice: 15500, Stock: 70, Active: true},
		{ID: "rm-telur", Name: "Telur Ayam", Unit: "kg", SellPrice: 30000, PurchasePrice: 26000, Stock: 45, Active: true},
	}

	products := []domain.Product{
		{ID: "prd-kopisusu", Name: "Kopi Susu Gula Aren", Category: domain.CategoryBeverage, SellPrice: 18000, Active: true, CreatedAt: now},
		{ID: "prd-esteh", Name: "Es Teh Manis", Category: domain.CategoryBeverage, SellPrice: 8000, Active: true, CreatedAt: now},
		{ID: "prd-jeruk", Name: "Es Jeruk Peras", Category: domain.CategoryBeverage, SellPrice: 10000, Active: true, CreatedAt: now},
		{ID: "prd-nasgor", Name: "Nasi Goreng Spesial", Category: "food", SellPrice: 25000, Active: true, CreatedAt: now},
		{ID: "prd-migoreng", Name: "Mie Goreng Telur", Category: "food", SellPrice: 20000, Active: true, CreatedAt: now},
		{ID: "prd-keripik", Name: "Keripik Singkong", Category: "snack", SellPrice: 12000, Active: true, CreatedAt: now},
	}

	materialMap := make(map[string]domain.RawMaterial, len(materials))
	for _, m := range materials {
		m.CreatedAt = now
		m.UpdatedAt = now
		materialMap[m.ID] = m
	}
	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}
	outletMap := make(map[string]domain.Outlet, len(outlets))
	for _, o := range outlets {
		outletMap[o.ID] = o
	}

	return &Store{
		materialsByID:   materialMap,
		materialOrders:  make(map[string]domain.MaterialOrder),
		productsByID:    productMap,
		outletsByID:     outletMap,
		ordersByID:      make(map[string]domain.Order),
		dailyCashByKey:  make(map[string]domain.DailyCash),
		usersByUsername: seedUsers(),
		auditLogs:       make([]domain.AuditLog, 0, 128),
	}
}

func (s *Store) CreateRawMaterial(_ context.Context, material domain.RawMaterial) (*domain.RawMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if material.ID == "" {
		material.ID = xid.New("rm")
	}
	if _, exists := s.materialsByID[material.ID]; exists {
		return nil, store.ErrDuplicate
	}
	now := time.Now().UTC()
	material.Active = true
	material.DeletedAt = nil
	if material.CreatedAt.IsZero() {
		material.CreatedAt = now
	}
	material.UpdatedAt = now

	s.materialsByID[material.ID] = material
	created := material
	return &created, nil
}

func (s *Store) GetRawMaterial(_ context.Context, id string) (*domain.RawMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	material, exists := s.materialsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyMaterial := material
	return &copyMaterial, nil
}

func (s *Store) ListRawMaterials(_ context.Context, includeDeleted bool) ([]domain.RawMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	materials := make([]domain.RawMaterial, 0, len(s.materialsByID))
	for _, m := range s.materialsByID {
		if !includeDeleted && !m.Active {
			continue
		}
		materials = append(materials, m)
	}

	slices.SortFunc(materials, func(a, b domain.RawMaterial) int {
		return strings.Compare(a.Name, b.Name)
	})
	return materials, nil
}

func (s *Store) GetRawMaterialsByIDs(_ context.Context, ids []string) (map[string]domain.RawMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.RawMaterial, len(ids))
	for _, id := range ids {
		if m, exists := s.materialsByID[id]; exists {
			result[id] = m
		}
	}
	return result, nil
}

func (s *Store) UpdateRawMaterial(_ context.Context, material domain.RawMaterial) (*domain.RawMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.materialsByID[material.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	material.Stock = current.Stock
	material.Active = current.Active
	material.DeletedAt = current.DeletedAt
	material.CreatedAt = current.CreatedAt
	material.UpdatedAt = time.Now().UTC()

	s.materialsByID[material.ID] = material
	updated := material
	return &updated, nil
}

func (s *Store) SoftDeleteRawMaterial(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	material, exists := s.materialsByID[id]
	if !exists {
		return store.ErrNotFound
	}
	material.Active = false
	deletedAt := at.UTC()
	material.DeletedAt = &deletedAt
	material.UpdatedAt = deletedAt
	s.materialsByID[id] = material
	return nil
}

func (s *Store) AdjustRawMaterialStock(_ context.Context, id string, delta int64) (*domain.RawMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	material, exists := s.materialsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	if material.Stock+delta < 0 {
		return nil, &store.InsufficientStockError{
			MaterialID:   material.ID,
			MaterialName: material.Name,
			Requested:    -delta,
			Available:    material.Stock,
		}
	}
	material.Stock += delta
	material.UpdatedAt = time.Now().UTC()
	s.materialsByID[id] = material
	adjusted := material
	return &adjusted, nil
}

func (s *Store) BulkInsertRawMaterials(_ context.Context, materials []domain.RawMaterial) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for i := range materials {
		m := materials[i]
		if m.ID == "" {
			m.ID = xid.New("rm")
		}
		if _, exists := s.materialsByID[m.ID]; exists {
			return store.ErrDuplicate
		}
		m.Active = true
		m.CreatedAt = now
		m.UpdatedAt = now
		s.materialsByID[m.ID] = m
	}
	return nil
}

func (s *Store) MaterialHasOpenOrders(_ context.Context, materialID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, order := range s.materialOrders {
		if order.Status == domain.MaterialOrderStatusDelivered {
			continue
		}
		for _, item := range order.Items {
			if item.MaterialID == materialID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Store) CreateMaterialOrder(_ context.Context, order domain.MaterialOrder) (*domain.MaterialOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = xid.New("mo")
	}
	now := time.Now().UTC()
	order.Status = domain.MaterialOrderStatusPending
	order.ApprovedAt = nil
	order.DeliveredAt = nil
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = xid.New("moi")
		}
		order.Items[i].OrderID = order.ID
	}

	s.materialOrders[order.ID] = cloneMaterialOrder(order)
	created := cloneMaterialOrder(order)
	return &created, nil
}

func (s *Store) GetMaterialOrder(_ context.Context, id string) (*domain.MaterialOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.materialOrders[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyOrder := cloneMaterialOrder(order)
	return &copyOrder, nil
}

func (s *Store) ListMaterialOrders(_ context.Context, filter store.MaterialOrderFilter) ([]domain.MaterialOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.MaterialOrder, 0, len(s.materialOrders))
	for _, order := range s.materialOrders {
		if filter.OutletID != "" && order.OutletID != filter.OutletID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		orders = append(orders, cloneMaterialOrder(order))
	}

	slices.SortFunc(orders, func(a, b domain.MaterialOrder) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if filter.Limit > 0 && len(orders) > filter.Limit {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}

func (s *Store) ReplaceMaterialOrderItems(_ context.Context, orderID string, order domain.MaterialOrder) (*domain.MaterialOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.materialOrders[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if current.Status != domain.MaterialOrderStatusPending {
		return nil, &store.InvalidStateError{Current: current.Status, Attempted: "edit order"}
	}

	current.PaymentMethod = order.PaymentMethod
	current.Notes = order.Notes
	current.TotalAmount = order.TotalAmount
	current.UpdatedAt = time.Now().UTC()
	current.Items = make([]domain.MaterialOrderItem, len(order.Items))
	copy(current.Items, order.Items)
	for i := range current.Items {
		if current.Items[i].ID == "" {
			current.Items[i].ID = xid.New("moi")
		}
		current.Items[i].OrderID = orderID
	}

	s.materialOrders[orderID] = cloneMaterialOrder(current)
	updated := cloneMaterialOrder(current)
	return &updated, nil
}

func (s *Store) ApproveMaterialOrder(_ context.Context, orderID string, at time.Time) (*domain.MaterialOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.materialOrders[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if order.Status != domain.MaterialOrderStatusPending {
		return nil, &store.InvalidStateError{Current: order.Status, Attempted: "approve"}
	}

	approvedAt := at.UTC()
	order.Status = domain.MaterialOrderStatusApproved
	order.ApprovedAt = &approvedAt
	order.UpdatedAt = approvedAt
	s.materialOrders[orderID] = cloneMaterialOrder(order)
	approved := cloneMaterialOrder(order)
	return &approved, nil
}

func (s *Store) DeliverMaterialOrder(_ context.Context, orderID string, at time.Time) (*domain.MaterialOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.materialOrders[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if order.Status != domain.MaterialOrderStatusApproved {
		return nil, &store.InvalidStateError{Current: order.Status, Attempted: "deliver"}
	}

	// Validate every decrement before mutating anything so a failure leaves
	// stock exactly as it was.
	for _, item := range order.Items {
		material, ok := s.materialsByID[item.MaterialID]
		if !ok {
			return nil, store.ErrNotFound
		}
		if material.Stock-item.Quantity < 0 {
			return nil, &store.InsufficientStockError{
				MaterialID:   material.ID,
				MaterialName: material.Name,
				Requested:    item.Quantity,
				Available:    material.Stock,
			}
		}
	}

	deliveredAt := at.UTC()
	for _, item := range order.Items {
		material := s.materialsByID[item.MaterialID]
		material.Stock -= item.Quantity
		material.UpdatedAt = deliveredAt
		s.materialsByID[item.MaterialID] = material
	}
	order.Status = domain.MaterialOrderStatusDelivered
	order.DeliveredAt = &deliveredAt
	order.UpdatedAt = deliveredAt
	s.materialOrders[orderID] = cloneMaterialOrder(order)
	delivered := cloneMaterialOrder(order)
	return &delivered, nil
}

func (s *Store) DeleteMaterialOrder(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.materialOrders[orderID]
	if !exists {
		return store.ErrNotFound
	}
	if order.Status != domain.MaterialOrderStatusPending {
		return &store.InvalidStateError{Current: order.Status, Attempted: "cancel"}
	}
	delete(s.materialOrders, orderID)
	return nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if _, exists := s.productsByID[product.ID]; exists {
		return nil, store.ErrDuplicate
	}
	product.Active = true
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	s.productsByID[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productsByID))
	for _, p := range s.productsByID {
		if !p.Active {
			continue
		}
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.Category, b.Category)
	})
	return products, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, exists := s.productsByID[id]; exists {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Store) CreateOutlet(_ context.Context, outlet domain.Outlet) (*domain.Outlet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if outlet.ID == "" {
		outlet.ID = xid.New("outlet")
	}
	if _, exists := s.outletsByID[outlet.ID]; exists {
		return nil, store.ErrDuplicate
	}
	outlet.Active = true
	if outlet.CreatedAt.IsZero() {
		outlet.CreatedAt = time.Now().UTC()
	}
	s.outletsByID[outlet.ID] = outlet
	created := outlet
	return &created, nil
}

func (s *Store) GetOutlet(_ context.Context, id string) (*domain.Outlet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outlet, exists := s.outletsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyOutlet := outlet
	return &copyOutlet, nil
}

func (s *Store) ListOutlets(_ context.Context) ([]domain.Outlet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outlets := make([]domain.Outlet, 0, len(s.outletsByID))
	for _, o := range s.outletsByID {
		outlets = append(outlets, o)
	}
	slices.SortFunc(outlets, func(a, b domain.Outlet) int {
		return strings.Compare(a.Name, b.Name)
	})
	return outlets, nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = xid.New("ord")
	}
	if order.TransactionTime.IsZero() {
		order.TransactionTime = time.Now().UTC()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = xid.New("oi")
		}
		order.Items[i].OrderID = order.ID
	}

	s.ordersByID[order.ID] = cloneOrder(order)
	created := cloneOrder(order)
	return &created, nil
}

func (s *Store) ListOrders(_ context.Context, filter store.OrderFilter) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(s.ordersByID))
	for _, order := range s.ordersByID {
		if !s.orderMatches(order, filter.From, filter.To, filter.OutletID) {
			continue
		}
		orders = append(orders, cloneOrder(order))
	}
	slices.SortFunc(orders, func(a, b domain.Order) int {
		return b.TransactionTime.Compare(a.TransactionTime)
	})
	if filter.Limit > 0 && len(orders) > filter.Limit {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}

func (s *Store) GetSalesTotals(_ context.Context, from time.Time, to time.Time, outletID string) (domain.SalesTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals domain.SalesTotals
	for _, order := range s.ordersByID {
		if !s.orderMatches(order, from, to, outletID) {
			continue
		}
		totals.OrderCount++
		totals.Revenue += order.Total
		totals.Subtotal += order.Subtotal
		totals.Discount += order.Discount
		totals.Tax += order.Tax
		totals.ServiceCharge += order.ServiceCharge
	}
	return totals, nil
}

func (s *Store) GetPaymentBreakdown(_ context.Context, from time.Time, to time.Time, outletID string) ([]domain.PaymentMethodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byMethod := make(map[string]*domain.PaymentMethodSummary)
	for _, order := range s.ordersByID {
		if !s.orderMatches(order, from, to, outletID) {
			continue
		}
		entry, ok := byMethod[order.PaymentMethod]
		if !ok {
			entry = &domain.PaymentMethodSummary{Method: order.PaymentMethod}
			byMethod[order.PaymentMethod] = entry
		}
		entry.Count++
		entry.Total += order.Total
	}

	result := make([]domain.PaymentMethodSummary, 0, len(byMethod))
	for _, entry := range byMethod {
		result = append(result, *entry)
	}
	slices.SortFunc(result, func(a, b domain.PaymentMethodSummary) int {
		return strings.Compare(a.Method, b.Method)
	})
	return result, nil
}

func (s *Store) GetCategorySales(_ context.Context, from time.Time, to time.Time, outletID string, category string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, order := range s.ordersByID {
		if !s.orderMatches(order, from, to, outletID) {
			continue
		}
		for _, item := range order.Items {
			if item.Category != category {
				continue
			}
			total += item.Quantity * item.UnitPrice
		}
	}
	return total, nil
}

func (s *Store) UpsertDailyCash(_ context.Context, entry domain.DailyCash) (*domain.DailyCash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := entry.Date.UTC().Truncate(24 * time.Hour)
	key := entry.OutletID + "|" + day.Format("2006-01-02")
	now := time.Now().UTC()

	current, exists := s.dailyCashByKey[key]
	if exists {
		current.OpeningBalance = entry.OpeningBalance
		current.Expenses = entry.Expenses
		current.Notes = entry.Notes
		current.UpdatedAt = now
		s.dailyCashByKey[key] = current
		updated := current
		return &updated, nil
	}

	if entry.ID == "" {
		entry.ID = xid.New("dc")
	}
	entry.Date = day
	entry.CreatedAt = now
	entry.UpdatedAt = now
	s.dailyCashByKey[key] = entry
	created := entry
	return &created, nil
}

func (s *Store) GetCashLedgerTotals(_ context.Context, from time.Time, to time.Time, outletID string) (domain.CashLedgerTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals domain.CashLedgerTotals
	for _, entry := range s.dailyCashByKey {
		if outletID != "" && entry.OutletID != outletID {
			continue
		}
		if entry.Date.Before(from) || !entry.Date.Before(to) {
			continue
		}
		totals.OpeningBalance += entry.OpeningBalance
		totals.Expenses += entry.Expenses
	}
	return totals, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrDuplicate
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]domain.AuditLog, 0, len(s.auditLogs))
	for _, entry := range s.auditLogs {
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		logs = append(logs, entry)
	}
	slices.SortFunc(logs, func(a, b domain.AuditLog) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// orderMatches applies the shared [from, to) range and outlet filter.
// Callers must hold at least a read lock.
func (s *Store) orderMatches(order domain.Order, from time.Time, to time.Time, outletID string) bool {
	if outletID != "" && order.OutletID != outletID {
		return false
	}
	if !from.IsZero() && order.TransactionTime.Before(from) {
		return false
	}
	if !to.IsZero() && !order.TransactionTime.Before(to) {
		return false
	}
	return true
}

func cloneMaterialOrder(order domain.MaterialOrder) domain.MaterialOrder {
	copyOrder := order
	copyOrder.Items = make([]domain.MaterialOrderItem, len(order.Items))
	copy(copyOrder.Items, order.Items)
	return copyOrder
}

func cloneOrder(order domain.Order) domain.Order {
	copyOrder := order
	copyOrder.Items = make([]domain.OrderItem, len(order.Items))
	copy(copyOrder.Items, order.Items)
	return copyOrder
}
