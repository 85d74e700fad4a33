package store

import (
	"context"
	"time"

	"warungpos/backend/internal/domain"
)

type MaterialOrderFilter struct {
	OutletID string
	Status   string
	Limit    int
}

type OrderFilter struct {
	OutletID string
	From     time.Time
	To       time.Time
	Limit    int
}

type Repository interface {
	CreateRawMaterial(ctx context.Context, material domain.RawMaterial) (*domain.RawMaterial, error)
	GetRawMaterial(ctx context.Context, id string) (*domain.RawMaterial, error)
	ListRawMaterials(ctx context.Context, includeDeleted bool) ([]domain.RawMaterial, error)
	GetRawMaterialsByIDs(ctx context.Context, ids []string) (map[string]domain.RawMaterial, error)
	UpdateRawMaterial(ctx context.Context, material domain.RawMaterial) (*domain.RawMaterial, error)
	SoftDeleteRawMaterial(ctx context.Context, id string, at time.Time) error
	AdjustRawMaterialStock(ctx context.Context, id string, delta int64) (*domain.RawMaterial, error)
	BulkInsertRawMaterials(ctx context.Context, materials []domain.RawMaterial) error
	MaterialHasOpenOrders(ctx context.Context, materialID string) (bool, error)

	CreateMaterialOrder(ctx context.Context, order domain.MaterialOrder) (*domain.MaterialOrder, error)
	GetMaterialOrder(ctx context.Context, id string) (*domain.MaterialOrder, error)
	ListMaterialOrders(ctx context.Context, filter MaterialOrderFilter) ([]domain.MaterialOrder, error)
	ReplaceMaterialOrderItems(ctx context.Context, orderID string, order domain.MaterialOrder) (*domain.MaterialOrder, error)
	ApproveMaterialOrder(ctx context.Context, orderID string, at time.Time) (*domain.MaterialOrder, error)
	DeliverMaterialOrder(ctx context.Context, orderID string, at time.Time) (*domain.MaterialOrder, error)
	DeleteMaterialOrder(ctx context.Context, orderID string) error

	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)

	CreateOutlet(ctx context.Context, outlet domain.Outlet) (*domain.Outlet, error)
	GetOutlet(ctx context.Context, id string) (*domain.Outlet, error)
	ListOutlets(ctx context.Context) ([]domain.Outlet, error)

	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	GetSalesTotals(ctx context.Context, from time.Time, to time.Time, outletID string) (domain.SalesTotals, error)
	GetPaymentBreakdown(ctx context.Context, from time.Time, to time.Time, outletID string) ([]domain.PaymentMethodSummary, error)
	GetCategorySales(ctx context.Context, from time.Time, to time.Time, outletID string, category string) (int64, error)

	UpsertDailyCash(ctx context.Context, entry domain.DailyCash) (*domain.DailyCash, error)
	GetCashLedgerTotals(ctx context.Context, from time.Time, to time.Time, outletID string) (domain.CashLedgerTotals, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
}
