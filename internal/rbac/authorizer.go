package rbac

import "github.com/google/uuid"

// Actor is the authenticated identity a decision is made for.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// RequiredAny pairs a full-scope permission with its own-scoped
// fallback. The full permission always wins when both are granted.
type RequiredAny struct {
	Full Permission
	Own  Permission
}

// Authorizer is the single allow/deny primitive for entity access. It
// never returns an error; denial is just false.
type Authorizer struct {
	catalog *Catalog
}

func NewAuthorizer(catalog *Catalog) *Authorizer {
	return &Authorizer{catalog: catalog}
}

// Authorize allows when the actor's role grants the full permission, or
// grants the own-scoped permission and the actor owns the resource.
func (a *Authorizer) Authorize(actor Actor, required RequiredAny, resourceOwnerID uuid.UUID) bool {
	perms := a.catalog.PermissionsFor(actor.Role)
	if perms.Has(required.Full) {
		return true
	}
	return perms.Has(required.Own) && actor.ID == resourceOwnerID
}

// AuthorizeGlobal allows when the actor's role grants the permission,
// with no ownership fallback. Used for administrative operations.
func (a *Authorizer) AuthorizeGlobal(actor Actor, required Permission) bool {
	return a.catalog.PermissionsFor(actor.Role).Has(required)
}

// PermissionsFor exposes the catalog lookup for callers that branch on
// scope rather than a single target, like booking list filtering.
func (a *Authorizer) PermissionsFor(role Role) PermissionSet {
	return a.catalog.PermissionsFor(role)
}
