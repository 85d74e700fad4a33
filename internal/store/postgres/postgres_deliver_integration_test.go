package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()

	databaseURL := os.Getenv("WARUNGPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set WARUNGPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestDeliverMaterialOrderDeductsStock(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	stamp := time.Now().UnixNano()
	materialID := fmt.Sprintf("rm-deliver-it-%d", stamp)
	outletID := fmt.Sprintf("outlet-deliver-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM material_order_items WHERE material_id = $1`, materialID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM material_orders WHERE outlet_id = $1`, outletID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM raw_materials WHERE id = $1`, materialID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM outlets WHERE id = $1`, outletID)
	})

	if _, err := s.CreateOutlet(ctx, domain.Outlet{ID: outletID, Name: "Outlet IT"}); err != nil {
		t.Fatalf("create outlet: %v", err)
	}
	material, err := s.CreateRawMaterial(ctx, domain.RawMaterial{
		ID:            materialID,
		Name:          fmt.Sprintf("Gula IT %d", stamp),
		Unit:          "kg",
		SellPrice:     18000,
		PurchasePrice: 14500,
		Stock:         10,
	})
	if err != nil {
		t.Fatalf("create raw material: %v", err)
	}

	order, err := s.CreateMaterialOrder(ctx, domain.MaterialOrder{
		OutletID:      outletID,
		RequestedBy:   "owner",
		PaymentMethod: domain.PaymentCash,
		TotalAmount:   29000,
		Items: []domain.MaterialOrderItem{
			{MaterialID: material.ID, MaterialName: material.Name, Quantity: 2, PricePerUnit: 14500, Subtotal: 29000},
		},
	})
	if err != nil {
		t.Fatalf("create material order: %v", err)
	}

	if _, err := s.ApproveMaterialOrder(ctx, order.ID, time.Now().UTC()); err != nil {
		t.Fatalf("approve: %v", err)
	}
	delivered, err := s.DeliverMaterialOrder(ctx, order.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.Status != domain.MaterialOrderStatusDelivered {
		t.Fatalf("expected delivered status, got %s", delivered.Status)
	}
	if delivered.DeliveredAt == nil {
		t.Fatalf("expected delivered_at to be set")
	}

	after, err := s.GetRawMaterial(ctx, material.ID)
	if err != nil {
		t.Fatalf("get raw material: %v", err)
	}
	if after.Stock != 8 {
		t.Fatalf("expected stock 8 after delivering 2 units, got %d", after.Stock)
	}

	// A second delivery of the same order must fail and leave stock alone.
	if _, err := s.DeliverMaterialOrder(ctx, order.ID, time.Now().UTC()); err == nil {
		t.Fatalf("expected re-delivery to fail")
	} else {
		var stateErr *store.InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	}
	again, err := s.GetRawMaterial(ctx, material.ID)
	if err != nil {
		t.Fatalf("get raw material: %v", err)
	}
	if again.Stock != 8 {
		t.Fatalf("expected stock unchanged at 8, got %d", again.Stock)
	}
}

func TestDeliverMaterialOrderInsufficientStockRollsBack(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	stamp := time.Now().UnixNano()
	materialID := fmt.Sprintf("rm-short-it-%d", stamp)
	outletID := fmt.Sprintf("outlet-short-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM material_order_items WHERE material_id = $1`, materialID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM material_orders WHERE outlet_id = $1`, outletID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM raw_materials WHERE id = $1`, materialID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM outlets WHERE id = $1`, outletID)
	})

	if _, err := s.CreateOutlet(ctx, domain.Outlet{ID: outletID, Name: "Outlet IT"}); err != nil {
		t.Fatalf("create outlet: %v", err)
	}
	material, err := s.CreateRawMaterial(ctx, domain.RawMaterial{
		ID:            materialID,
		Name:          fmt.Sprintf("Susu IT %d", stamp),
		Unit:          "kaleng",
		SellPrice:     12500,
		PurchasePrice: 9800,
		Stock:         2,
	})
	if err != nil {
		t.Fatalf("create raw material: %v", err)
	}

	order, err := s.CreateMaterialOrder(ctx, domain.MaterialOrder{
		OutletID:      outletID,
		RequestedBy:   "owner",
		PaymentMethod: domain.PaymentCash,
		TotalAmount:   29400,
		Items: []domain.MaterialOrderItem{
			{MaterialID: material.ID, MaterialName: material.Name, Quantity: 3, PricePerUnit: 9800, Subtotal: 29400},
		},
	})
	if err != nil {
		t.Fatalf("create material order: %v", err)
	}
	if _, err := s.ApproveMaterialOrder(ctx, order.ID, time.Now().UTC()); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = s.DeliverMaterialOrder(ctx, order.ID, time.Now().UTC())
	var stockErr *store.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Shortfall() != 1 {
		t.Fatalf("expected shortfall 1, got %d", stockErr.Shortfall())
	}

	after, err := s.GetRawMaterial(ctx, material.ID)
	if err != nil {
		t.Fatalf("get raw material: %v", err)
	}
	if after.Stock != 2 {
		t.Fatalf("expected stock unchanged at 2, got %d", after.Stock)
	}
	unchanged, err := s.GetMaterialOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get material order: %v", err)
	}
	if unchanged.Status != domain.MaterialOrderStatusApproved {
		t.Fatalf("expected order to stay approved, got %s", unchanged.Status)
	}
}
