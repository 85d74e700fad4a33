package domain

import "time"

// All money values are int64 amounts in the smallest currency unit (rupiah).

type RawMaterial struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Unit          string     `json:"unit"`
	SellPrice     int64      `json:"sell_price"`
	PurchasePrice int64      `json:"purchase_price"`
	Stock         int64      `json:"stock"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

type RawMaterialCreateRequest struct {
	Name          string `json:"name"`
	Unit          string `json:"unit"`
	SellPrice     int64  `json:"sell_price"`
	PurchasePrice int64  `json:"purchase_price"`
	Stock         int64  `json:"stock"`
}

type RawMaterialUpdateRequest struct {
	Name          *string `json:"name,omitempty"`
	Unit          *string `json:"unit,omitempty"`
	SellPrice     *int64  `json:"sell_price,omitempty"`
	PurchasePrice *int64  `json:"purchase_price,omitempty"`
}

type StockAdjustRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

type MaterialOrder struct {
	ID            string              `json:"id"`
	OutletID      string              `json:"outlet_id"`
	RequestedBy   string              `json:"requested_by"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	TotalAmount   int64               `json:"total_amount"`
	Notes         string              `json:"notes,omitempty"`
	ApprovedAt    *time.Time          `json:"approved_at,omitempty"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Items         []MaterialOrderItem `json:"items"`
}

type MaterialOrderItem struct {
	ID           string `json:"id"`
	OrderID      string `json:"order_id"`
	MaterialID   string `json:"material_id"`
	MaterialName string `json:"material_name"`
	Quantity     int64  `json:"quantity"`
	PricePerUnit int64  `json:"price_per_unit"`
	Subtotal     int64  `json:"subtotal"`
}

type MaterialOrderLine struct {
	MaterialID string `json:"material_id"`
	Quantity   int64  `json:"quantity"`
}

type MaterialOrderCreateRequest struct {
	OutletID      string              `json:"outlet_id"`
	PaymentMethod string              `json:"payment_method"`
	Notes         string              `json:"notes"`
	Items         []MaterialOrderLine `json:"items"`
}

type MaterialOrderUpdateRequest struct {
	PaymentMethod string              `json:"payment_method"`
	Notes         string              `json:"notes"`
	Items         []MaterialOrderLine `json:"items"`
}

type MaterialOrderResponse struct {
	MaterialOrder MaterialOrder `json:"material_order"`
}

type MaterialOrderListResponse struct {
	MaterialOrders []MaterialOrder `json:"material_orders"`
}

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	SellPrice int64     `json:"sell_price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductCreateRequest struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	SellPrice int64  `json:"sell_price"`
}

type Outlet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type OutletCreateRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Order struct {
	ID              string      `json:"id"`
	OutletID        string      `json:"outlet_id"`
	CashierUsername string      `json:"cashier_username"`
	OrderType       string      `json:"order_type"`
	PaymentMethod   string      `json:"payment_method"`
	Subtotal        int64       `json:"subtotal"`
	Discount        int64       `json:"discount"`
	Tax             int64       `json:"tax"`
	ServiceCharge   int64       `json:"service_charge"`
	Total           int64       `json:"total"`
	AmountPaid      int64       `json:"amount_paid"`
	ChangeDue       int64       `json:"change_due"`
	TransactionTime time.Time   `json:"transaction_time"`
	Items           []OrderItem `json:"items"`
}

type OrderItem struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
}

type CheckoutLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CheckoutRequest struct {
	OutletID       string         `json:"outlet_id"`
	OrderType      string         `json:"order_type"`
	PaymentMethod  string         `json:"payment_method"`
	Discount       int64          `json:"discount"`
	TaxRatePercent float64        `json:"tax_rate_percent"`
	ServiceCharge  int64          `json:"service_charge"`
	AmountPaid     int64          `json:"amount_paid"`
	Items          []CheckoutLine `json:"items"`
}

type CheckoutResponse struct {
	Order Order `json:"order"`
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
}

type DailyCash struct {
	ID             string    `json:"id"`
	OutletID       string    `json:"outlet_id"`
	Date           time.Time `json:"date"`
	OpeningBalance int64     `json:"opening_balance"`
	Expenses       int64     `json:"expenses"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type DailyCashUpsertRequest struct {
	OutletID       string `json:"outlet_id"`
	Date           string `json:"date"`
	OpeningBalance int64  `json:"opening_balance"`
	Expenses       int64  `json:"expenses"`
	Notes          string `json:"notes"`
}

type SummaryRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	OutletID  string `json:"outlet_id"`
}

type PaymentMethodSummary struct {
	Method string `json:"method"`
	Count  int64  `json:"count"`
	Total  int64  `json:"total"`
}

type DailySummaryEntry struct {
	Date           string `json:"date"`
	OpeningBalance int64  `json:"opening_balance"`
	Expenses       int64  `json:"expenses"`
	CashSales      int64  `json:"cash_sales"`
	QrisSales      int64  `json:"qris_sales"`
	TotalSales     int64  `json:"total_sales"`
	ClosingBalance int64  `json:"closing_balance"`
}

type SalesSummary struct {
	StartDate          string                 `json:"start_date"`
	EndDate            string                 `json:"end_date"`
	OutletID           string                 `json:"outlet_id,omitempty"`
	OrderCount         int64                  `json:"order_count"`
	TotalRevenue       int64                  `json:"total_revenue"`
	TotalSubtotal      int64                  `json:"total_subtotal"`
	TotalDiscount      int64                  `json:"total_discount"`
	TotalTax           int64                  `json:"total_tax"`
	TotalServiceCharge int64                  `json:"total_service_charge"`
	PaymentBreakdown   []PaymentMethodSummary `json:"payment_breakdown"`
	CashSales          int64                  `json:"cash_sales"`
	QrisSales          int64                  `json:"qris_sales"`
	BeverageSales      int64                  `json:"beverage_sales"`
	OpeningBalance     int64                  `json:"opening_balance"`
	Expenses           int64                  `json:"expenses"`
	ClosingBalance     int64                  `json:"closing_balance"`
	DailyBreakdown     []DailySummaryEntry    `json:"daily_breakdown,omitempty"`
}

// SalesTotals and CashLedgerTotals are aggregate rows produced by the store
// for the summary service.
type SalesTotals struct {
	OrderCount    int64
	Revenue       int64
	Subtotal      int64
	Discount      int64
	Tax           int64
	ServiceCharge int64
}

type CashLedgerTotals struct {
	OpeningBalance int64
	Expenses       int64
}

type RawMaterialImportRow struct {
	RowNumber     int    `json:"row_number"`
	Name          string `json:"name"`
	Unit          string `json:"unit"`
	SellPrice     int64  `json:"sell_price"`
	PurchasePrice int64  `json:"purchase_price"`
	Stock         int64  `json:"stock"`
}

type ImportRowError struct {
	RowNumber int    `json:"row_number"`
	Message   string `json:"message"`
}

type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

type RestockRequest struct {
	OutletID string `json:"outlet_id"`
	Limit    int    `json:"limit"`
}

type RestockSuggestion struct {
	MaterialID    string  `json:"material_id"`
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	CurrentStock  int64   `json:"current_stock"`
	PendingQty    int64   `json:"pending_qty"`
	SuggestedQty  int64   `json:"suggested_qty"`
	EstimatedCost int64   `json:"estimated_cost"`
	ReasonCode    string  `json:"reason_code"`
	Confidence    float64 `json:"confidence"`
}

type RestockResponse struct {
	GeneratedAt string              `json:"generated_at"`
	Suggestions []RestockSuggestion `json:"suggestions"`
	LatencyMS   int64               `json:"latency_ms"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	OutletID    string `json:"outlet_id,omitempty"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor identifies who is performing an operation. It is passed explicitly
// into every service call so authorization is testable without a request
// context. An owner has an empty OutletID and may act on every outlet.
type Actor struct {
	Username string
	Role     string
	OutletID string
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	OutletID string `json:"outlet_id"`
}

type UserInfo struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	OutletID  string    `json:"outlet_id,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	OutletID  string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	MaterialOrderStatusPending   = "pending"
	MaterialOrderStatusApproved  = "approved"
	MaterialOrderStatusDelivered = "delivered"
)

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

const (
	PaymentCash     = "cash"
	PaymentQris     = "qris"
	PaymentDebit    = "debit"
	PaymentTransfer = "transfer"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeAway = "take_away"
)

// CategoryBeverage is the product category rolled up as beverage_sales in
// the financial summary.
const CategoryBeverage = "beverage"
