// Package policy answers the access questions the service layer asks before
// executing side effects: is this actor an owner, and is this actor scoped
// to a given outlet. Role strings come from the auth token; outlet scope is
// carried on the actor so decisions need no request context.
package policy

import "warungpos/backend/internal/domain"

func IsOwner(actor domain.Actor) bool {
	return actor.Role == domain.RoleOwner
}

// CanAccessOutlet reports whether the actor may operate on the given outlet.
// Owners may act on every outlet; everyone else only on their own.
func CanAccessOutlet(actor domain.Actor, outletID string) bool {
	if IsOwner(actor) {
		return true
	}
	return actor.OutletID != "" && actor.OutletID == outletID
}

// CanMutateCatalog reports whether the actor may change master data
// (raw materials, products, outlets, users).
func CanMutateCatalog(actor domain.Actor) bool {
	return IsOwner(actor)
}

// CanCheckout reports whether the actor may record sales orders.
func CanCheckout(actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleOwner, domain.RoleManager, domain.RoleCashier:
		return true
	}
	return false
}
