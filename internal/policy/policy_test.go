package policy

import (
	"testing"

	"warungpos/backend/internal/domain"
)

func TestOwnerReachesEveryOutlet(t *testing.T) {
	owner := domain.Actor{Username: "owner", Role: domain.RoleOwner}
	if !CanAccessOutlet(owner, "outlet-pusat") || !CanAccessOutlet(owner, "outlet-cabang") {
		t.Fatalf("expected owner to access every outlet")
	}
	if !CanMutateCatalog(owner) {
		t.Fatalf("expected owner to mutate the catalog")
	}
}

func TestNonOwnerScopedToOwnOutlet(t *testing.T) {
	manager := domain.Actor{Username: "manager", Role: domain.RoleManager, OutletID: "outlet-pusat"}
	if !CanAccessOutlet(manager, "outlet-pusat") {
		t.Fatalf("expected manager to access their own outlet")
	}
	if CanAccessOutlet(manager, "outlet-cabang") {
		t.Fatalf("expected manager to be denied a foreign outlet")
	}
	if CanMutateCatalog(manager) {
		t.Fatalf("expected catalog mutation to stay owner-only")
	}
}

func TestCanCheckoutCoversKnownRolesOnly(t *testing.T) {
	for _, role := range []string{domain.RoleOwner, domain.RoleManager, domain.RoleCashier} {
		if !CanCheckout(domain.Actor{Role: role}) {
			t.Fatalf("expected role %s to check out", role)
		}
	}
	if CanCheckout(domain.Actor{Role: "visitor"}) {
		t.Fatalf("expected unknown role to be denied checkout")
	}
}
