package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateRawMaterial(ctx context.Context, material domain.RawMaterial) (*domain.RawMaterial, error) {
	if material.ID == "" {
		material.ID = xid.New("rm")
	}
	now := time.Now().UTC()
	material.Active = true
	material.DeletedAt = nil
	material.CreatedAt = now
	material.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO raw_materials (id, name, unit, sell_price, purchase_price, stock, active, created_at, updated_at, deleted_at)
		VALUES ($1,$2,$3,$4,$5,$6,true,$7,$7,NULL)
	`, material.ID, material.Name, material.Unit, material.SellPrice, material.PurchasePrice, material.Stock, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	created := material
	return &created, nil
}

func (s *Store) GetRawMaterial(ctx context.Context, id string) (*domain.RawMaterial, error) {
	var material domain.RawMaterial
	var deletedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, unit, sell_price, purchase_price, stock, active, created_at, updated_at, deleted_at
		FROM raw_materials
		WHERE id = $1
	`, id).Scan(
		&material.ID,
		&material.Name,
		&material.Unit,
		&material.SellPrice,
		&material.PurchasePrice,
		&material.Stock,
		&material.Active,
		&material.CreatedAt,
		&material.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		material.DeletedAt = &t
	}
	return &material, nil
}

func (s *Store) ListRawMaterials(ctx context.Context, includeDeleted bool) ([]domain.RawMaterial, error) {
	query := `
		SELECT id, name, unit, sell_price, purchase_price, stock, active, created_at, updated_at, deleted_at
		FROM raw_materials
	`
	if !includeDeleted {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	materials := make([]domain.RawMaterial, 0, 64)
	for rows.Next() {
		var material domain.RawMaterial
		var deletedAt sql.NullTime
		if err := rows.Scan(
			&material.ID,
			&material.Name,
			&material.Unit,
			&material.SellPrice,
			&material.PurchasePrice,
			&material.Stock,
			&material.Active,
			&material.CreatedAt,
			&material.UpdatedAt,
			&deletedAt,
		); err != nil {
			return nil, err
		}
		if deletedAt.Valid {
			t := deletedAt.Time.UTC()
			material.DeletedAt = &t
		}
		materials = append(materials, material)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return materials, nil
}

func (s *Store) GetRawMaterialsByIDs(ctx context.Context, ids []string) (map[string]domain.RawMaterial, error) {
	result := make(map[string]domain.RawMaterial, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit, sell_price, purchase_price, stock, active, created_at, updated_at
		FROM raw_materials
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var material domain.RawMaterial
		if err := rows.Scan(
			&material.ID,
			&material.Name,
			&material.Unit,
			&material.SellPrice,
			&material.PurchasePrice,
			&material.Stock,
			&material.Active,
			&material.CreatedAt,
			&material.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result[material.ID] = material
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) UpdateRawMaterial(ctx context.Context, material domain.RawMaterial) (*domain.RawMaterial, error) {
	err := s.db.QueryRowContext(ctx, `
		UPDATE raw_materials
		SET name = $2, unit = $3, sell_price = $4, purchase_price = $5, updated_at = now()
		WHERE id = $1
		RETURNING stock, active, created_at, updated_at
	`, material.ID, material.Name, material.Unit, material.SellPrice, material.PurchasePrice).Scan(
		&material.Stock,
		&material.Active,
		&material.CreatedAt,
		&material.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	updated := material
	return &updated, nil
}

func (s *Store) SoftDeleteRawMaterial(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE raw_materials
		SET active = false, deleted_at = $2, updated_at = $2
		WHERE id = $1
	`, id, at.UTC())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AdjustRawMaterialStock(ctx context.Context, id string, delta int64) (*domain.RawMaterial, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var material domain.RawMaterial
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, unit, sell_price, purchase_price, stock, active, created_at
		FROM raw_materials
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&material.ID,
		&material.Name,
		&material.Unit,
		&material.SellPrice,
		&material.PurchasePrice,
		&material.Stock,
		&material.Active,
		&material.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if material.Stock+delta < 0 {
		return nil, &store.InsufficientStockError{
			MaterialID:   material.ID,
			MaterialName: material.Name,
			Requested:    -delta,
			Available:    material.Stock,
		}
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE raw_materials
		SET stock = stock + $2, updated_at = $3
		WHERE id = $1
	`, id, delta, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	material.Stock += delta
	material.UpdatedAt = now
	return &material, nil
}

func (s *Store) BulkInsertRawMaterials(ctx context.Context, materials []domain.RawMaterial) error {
	if len(materials) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, material := range materials {
		if material.ID == "" {
			material.ID = xid.New("rm")
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO raw_materials (id, name, unit, sell_price, purchase_price, stock, active, created_at, updated_at, deleted_at)
			VALUES ($1,$2,$3,$4,$5,$6,true,$7,$7,NULL)
		`, material.ID, material.Name, material.Unit, material.SellPrice, material.PurchasePrice, material.Stock, now)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicate
			}
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) MaterialHasOpenOrders(ctx context.Context, materialID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM material_order_items i
			JOIN material_orders o ON o.id = i.order_id
			WHERE i.material_id = $1 AND o.status IN ($2, $3)
		)
	`, materialID, domain.MaterialOrderStatusPending, domain.MaterialOrderStatusApproved).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) CreateMaterialOrder(ctx context.Context, order domain.MaterialOrder) (*domain.MaterialOrder, error) {
	if order.ID == "" {
		order.ID = xid.New("mo")
	}
	now := time.Now().UTC()
	order.Status = domain.MaterialOrderStatusPending
	order.ApprovedAt = nil
	order.DeliveredAt = nil
	order.CreatedAt = now
	order.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO material_orders (id, outlet_id, requested_by, status, payment_method, total_amount, notes, approved_at, delivered_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NULL,NULL,$8,$8)
	`, order.ID, order.OutletID, order.RequestedBy, order.Status, order.PaymentMethod, order.TotalAmount, nullIfEmpty(order.Notes), now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = xid.New("moi")
		}
		order.Items[i].OrderID = order.ID
		item := order.Items[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO material_order_items (id, order_id, material_id, material_name, quantity, price_per_unit, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, item.ID, item.OrderID, item.MaterialID, item.MaterialName, item.Quantity, item.PricePerUnit, item.Subtotal)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := order
	return &created, nil
}

func (s *Store) GetMaterialOrder(ctx context.Context, id string) (*domain.MaterialOrder, error) {
	order, err := scanMaterialOrder(s.db.QueryRowContext(ctx, `
		SELECT id, outlet_id, requested_by, status, payment_method, total_amount, COALESCE(notes,''), approved_at, delivered_at, created_at, updated_at
		FROM material_orders
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	items, err := s.loadMaterialOrderItems(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (s *Store) ListMaterialOrders(ctx context.Context, filter store.MaterialOrderFilter) ([]domain.MaterialOrder, error) {
	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, outlet_id, requested_by, status, payment_method, total_amount, COALESCE(notes,''), approved_at, delivered_at, created_at, updated_at
		FROM material_orders
		WHERE ($1 = '' OR outlet_id = $1)
			AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, filter.OutletID, filter.Status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.MaterialOrder, 0, 16)
	for rows.Next() {
		order, err := scanMaterialOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := s.loadMaterialOrderItems(ctx, s.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *Store) ReplaceMaterialOrderItems(ctx context.Context, orderID string, order domain.MaterialOrder) (*domain.MaterialOrder, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	current, err := lockMaterialOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.MaterialOrderStatusPending {
		return nil, &store.InvalidStateError{Current: current.Status, Attempted: "edit order"}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM material_order_items WHERE order_id = $1`, orderID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = xid.New("moi")
		}
		order.Items[i].OrderID = orderID
		item := order.Items[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO material_order_items (id, order_id, material_id, material_name, quantity, price_per_unit, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, item.ID, item.OrderID, item.MaterialID, item.MaterialName, item.Quantity, item.PricePerUnit, item.Subtotal)
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE material_orders
		SET payment_method = $2, notes = $3, total_amount = $4, updated_at = $5
		WHERE id = $1
	`, orderID, order.PaymentMethod, nullIfEmpty(order.Notes), order.TotalAmount, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	current.PaymentMethod = order.PaymentMethod
	current.Notes = order.Notes
	current.TotalAmount = order.TotalAmount
	current.UpdatedAt = now
	current.Items = order.Items
	return current, nil
}

func (s *Store) ApproveMaterialOrder(ctx context.Context, orderID string, at time.Time) (*domain.MaterialOrder, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	order, err := lockMaterialOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.MaterialOrderStatusPending {
		return nil, &store.InvalidStateError{Current: order.Status, Attempted: "approve"}
	}

	approvedAt := at.UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE material_orders
		SET status = $2, approved_at = $3, updated_at = $3
		WHERE id = $1
	`, orderID, domain.MaterialOrderStatusApproved, approvedAt)
	if err != nil {
		return nil, err
	}

	items, err := s.loadMaterialOrderItems(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	order.Status = domain.MaterialOrderStatusApproved
	order.ApprovedAt = &approvedAt
	order.UpdatedAt = approvedAt
	order.Items = items
	return order, nil
}

// DeliverMaterialOrder moves an approved order to delivered and decrements
// each item's stock in the same transaction. The order row and every
// touched material row are locked first so concurrent deliveries cannot
// both read stale stock; if any decrement would go negative the whole
// transaction rolls back.
func (s *Store) DeliverMaterialOrder(ctx context.Context, orderID string, at time.Time) (*domain.MaterialOrder, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	order, err := lockMaterialOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.MaterialOrderStatusApproved {
		return nil, &store.InvalidStateError{Current: order.Status, Attempted: "deliver"}
	}

	items, err := s.loadMaterialOrderItems(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &store.InvalidStateError{Current: "empty", Attempted: "deliver"}
	}
	order.Items = items

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MaterialID)
	}

	stockRows, err := tx.QueryContext(ctx, `
		SELECT id, name, stock
		FROM raw_materials
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, err
	}
	type lockedMaterial struct {
		name  string
		stock int64
	}
	stockMap := make(map[string]lockedMaterial, len(ids))
	for stockRows.Next() {
		var id, name string
		var stock int64
		if err := stockRows.Scan(&id, &name, &stock); err != nil {
			_ = stockRows.Close()
			return nil, err
		}
		stockMap[id] = lockedMaterial{name: name, stock: stock}
	}
	if err := stockRows.Err(); err != nil {
		_ = stockRows.Close()
		return nil, err
	}
	_ = stockRows.Close()

	for _, item := range items {
		material, ok := stockMap[item.MaterialID]
		if !ok {
			return nil, store.ErrNotFound
		}
		if material.stock-item.Quantity < 0 {
			return nil, &store.InsufficientStockError{
				MaterialID:   item.MaterialID,
				MaterialName: material.name,
				Requested:    item.Quantity,
				Available:    material.stock,
			}
		}
	}

	deliveredAt := at.UTC()
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			UPDATE raw_materials
			SET stock = stock - $2, updated_at = $3
			WHERE id = $1
		`, item.MaterialID, item.Quantity, deliveredAt)
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE material_orders
		SET status = $2, delivered_at = $3, updated_at = $3
		WHERE id = $1
	`, orderID, domain.MaterialOrderStatusDelivered, deliveredAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	order.Status = domain.MaterialOrderStatusDelivered
	order.DeliveredAt = &deliveredAt
	order.UpdatedAt = deliveredAt
	return order, nil
}

func (s *Store) DeleteMaterialOrder(ctx context.Context, orderID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order, err := lockMaterialOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.MaterialOrderStatusPending {
		return &store.InvalidStateError{Current: order.Status, Attempted: "cancel"}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM material_order_items WHERE order_id = $1`, orderID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM material_orders WHERE id = $1`, orderID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	product.Active = true
	product.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, sell_price, active, created_at)
		VALUES ($1,$2,$3,$4,true,$5)
	`, product.ID, product.Name, product.Category, product.SellPrice, product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	created := product
	return &created, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, sell_price, active, created_at
		FROM products
		WHERE active = true
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.SellPrice, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, sell_price, active, created_at
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.SellPrice, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateOutlet(ctx context.Context, outlet domain.Outlet) (*domain.Outlet, error) {
	if outlet.ID == "" {
		outlet.ID = xid.New("outlet")
	}
	outlet.Active = true
	outlet.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outlets (id, name, address, active, created_at)
		VALUES ($1,$2,$3,true,$4)
	`, outlet.ID, outlet.Name, nullIfEmpty(outlet.Address), outlet.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	created := outlet
	return &created, nil
}

func (s *Store) GetOutlet(ctx context.Context, id string) (*domain.Outlet, error) {
	var outlet domain.Outlet
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(address,''), active, created_at
		FROM outlets
		WHERE id = $1
	`, id).Scan(&outlet.ID, &outlet.Name, &outlet.Address, &outlet.Active, &outlet.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &outlet, nil
}

func (s *Store) ListOutlets(ctx context.Context) ([]domain.Outlet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(address,''), active, created_at
		FROM outlets
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outlets := make([]domain.Outlet, 0, 8)
	for rows.Next() {
		var outlet domain.Outlet
		if err := rows.Scan(&outlet.ID, &outlet.Name, &outlet.Address, &outlet.Active, &outlet.CreatedAt); err != nil {
			return nil, err
		}
		outlets = append(outlets, outlet)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return outlets, nil
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		order.ID = xid.New("ord")
	}
	if order.TransactionTime.IsZero() {
		order.TransactionTime = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, outlet_id, cashier_username, order_type, payment_method, subtotal, discount, tax, service_charge, total, amount_paid, change_due, transaction_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, order.ID, order.OutletID, order.CashierUsername, order.OrderType, order.PaymentMethod,
		order.Subtotal, order.Discount, order.Tax, order.ServiceCharge, order.Total,
		order.AmountPaid, order.ChangeDue, order.TransactionTime)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = xid.New("oi")
		}
		order.Items[i].OrderID = order.ID
		item := order.Items[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, category, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, item.ID, item.OrderID, item.ProductID, item.ProductName, item.Category, item.Quantity, item.UnitPrice, item.LineTotal)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := order
	return &created, nil
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]domain.Order, error) {
	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, outlet_id, cashier_username, order_type, payment_method, subtotal, discount, tax, service_charge, total, amount_paid, change_due, transaction_time
		FROM orders
		WHERE ($1 = '' OR outlet_id = $1)
			AND ($2::timestamptz IS NULL OR transaction_time >= $2)
			AND ($3::timestamptz IS NULL OR transaction_time < $3)
		ORDER BY transaction_time DESC
		LIMIT $4
	`, filter.OutletID, nullTime(filter.From), nullTime(filter.To), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 32)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.OutletID,
			&order.CashierUsername,
			&order.OrderType,
			&order.PaymentMethod,
			&order.Subtotal,
			&order.Discount,
			&order.Tax,
			&order.ServiceCharge,
			&order.Total,
			&order.AmountPaid,
			&order.ChangeDue,
			&order.TransactionTime,
		); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := s.loadOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *Store) GetSalesTotals(ctx context.Context, from time.Time, to time.Time, outletID string) (domain.SalesTotals, error) {
	var totals domain.SalesTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*)::bigint,
			COALESCE(SUM(total),0)::bigint,
			COALESCE(SUM(subtotal),0)::bigint,
			COALESCE(SUM(discount),0)::bigint,
			COALESCE(SUM(tax),0)::bigint,
			COALESCE(SUM(service_charge),0)::bigint
		FROM orders
		WHERE transaction_time >= $1
			AND transaction_time < $2
			AND ($3 = '' OR outlet_id = $3)
	`, from, to, outletID).Scan(
		&totals.OrderCount,
		&totals.Revenue,
		&totals.Subtotal,
		&totals.Discount,
		&totals.Tax,
		&totals.ServiceCharge,
	)
	if err != nil {
		return domain.SalesTotals{}, err
	}
	return totals, nil
}

func (s *Store) GetPaymentBreakdown(ctx context.Context, from time.Time, to time.Time, outletID string) ([]domain.PaymentMethodSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_method, COUNT(*)::bigint, COALESCE(SUM(total),0)::bigint
		FROM orders
		WHERE transaction_time >= $1
			AND transaction_time < $2
			AND ($3 = '' OR outlet_id = $3)
		GROUP BY payment_method
		ORDER BY payment_method
	`, from, to, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdown := make([]domain.PaymentMethodSummary, 0, 4)
	for rows.Next() {
		var entry domain.PaymentMethodSummary
		if err := rows.Scan(&entry.Method, &entry.Count, &entry.Total); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return breakdown, nil
}

func (s *Store) GetCategorySales(ctx context.Context, from time.Time, to time.Time, outletID string, category string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(i.quantity * i.unit_price),0)::bigint
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.transaction_time >= $1
			AND o.transaction_time < $2
			AND ($3 = '' OR o.outlet_id = $3)
			AND i.category = $4
	`, from, to, outletID, category).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpsertDailyCash(ctx context.Context, entry domain.DailyCash) (*domain.DailyCash, error) {
	if entry.ID == "" {
		entry.ID = xid.New("dc")
	}
	day := nowDateUTC(entry.Date)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_cash (id, outlet_id, date, opening_balance, expenses, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now(),now())
		ON CONFLICT (outlet_id, date)
		DO UPDATE SET opening_balance = EXCLUDED.opening_balance, expenses = EXCLUDED.expenses, notes = EXCLUDED.notes, updated_at = now()
		RETURNING id, created_at, updated_at
	`, entry.ID, entry.OutletID, day, entry.OpeningBalance, entry.Expenses, nullIfEmpty(entry.Notes)).Scan(
		&entry.ID,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Date = day
	saved := entry
	return &saved, nil
}

func (s *Store) GetCashLedgerTotals(ctx context.Context, from time.Time, to time.Time, outletID string) (domain.CashLedgerTotals, error) {
	var totals domain.CashLedgerTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(opening_balance),0)::bigint,
			COALESCE(SUM(expenses),0)::bigint
		FROM daily_cash
		WHERE date >= $1
			AND date < $2
			AND ($3 = '' OR outlet_id = $3)
	`, from, to, outletID).Scan(&totals.OpeningBalance, &totals.Expenses)
	if err != nil {
		return domain.CashLedgerTotals{}, err
	}
	return totals, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, outlet_id, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, user.Username, user.Password, user.Role, nullIfEmpty(user.OutletID), user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, COALESCE(outlet_id,''), active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.OutletID, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, nullIfEmpty(entry.EntityType), nullIfEmpty(entry.EntityID), nullIfEmpty(entry.Detail), entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, COALESCE(entity_type,''), COALESCE(entity_id,''), COALESCE(detail,''), created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) loadMaterialOrderItems(ctx context.Context, q querier, orderID string) ([]domain.MaterialOrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, material_id, material_name, quantity, price_per_unit, subtotal
		FROM material_order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MaterialOrderItem, 0, 8)
	for rows.Next() {
		var item domain.MaterialOrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MaterialID, &item.MaterialName, &item.Quantity, &item.PricePerUnit, &item.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) loadOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, category, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0, 8)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Category, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMaterialOrder(row rowScanner) (*domain.MaterialOrder, error) {
	var order domain.MaterialOrder
	var approvedAt, deliveredAt sql.NullTime
	err := row.Scan(
		&order.ID,
		&order.OutletID,
		&order.RequestedBy,
		&order.Status,
		&order.PaymentMethod,
		&order.TotalAmount,
		&order.Notes,
		&approvedAt,
		&deliveredAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if approvedAt.Valid {
		t := approvedAt.Time.UTC()
		order.ApprovedAt = &t
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time.UTC()
		order.DeliveredAt = &t
	}
	return &order, nil
}

func lockMaterialOrder(ctx context.Context, tx *sql.Tx, orderID string) (*domain.MaterialOrder, error) {
	return scanMaterialOrder(tx.QueryRowContext(ctx, `
		SELECT id, outlet_id, requested_by, status, payment_method, total_amount, COALESCE(notes,''), approved_at, delivered_at, created_at, updated_at
		FROM material_orders
		WHERE id = $1
		FOR UPDATE
	`, orderID))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nowDateUTC(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val time.Time) any {
	if val.IsZero() {
		return nil
	}
	return val
}
