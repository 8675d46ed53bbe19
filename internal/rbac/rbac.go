// Package rbac maps roles to permissions and decides allow/deny for a
// target entity. All authorization flows through this package; business
// code never compares role names directly.
package rbac

// Role names, mirrored in the roles table seed.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Permission names, mirrored in db/migrations/00002_seed_roles_permissions.sql.
type Permission string

const (
	ManageBookings    Permission = "manage_bookings"     // full control over any booking
	ManageOwnBookings Permission = "manage_own_bookings" // control limited to the caller's bookings
	ManageSpots       Permission = "manage_spots"        // create/rename spots
	ManageUsers       Permission = "manage_users"        // create users, assign roles
)

// PermissionSet is the set of permissions granted to a role.
type PermissionSet map[Permission]struct{}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

type Grant struct {
	Role       Role
	Permission Permission
}

// Catalog is an immutable role -> permission-set mapping. It is built
// once and safe for concurrent reads without locking.
type Catalog struct {
	grants map[Role]PermissionSet
}

func NewCatalog(grants []Grant) *Catalog {
	m := make(map[Role]PermissionSet)
	for _, g := range grants {
		set, ok := m[g.Role]
		if !ok {
			set = make(PermissionSet)
			m[g.Role] = set
		}
		set[g.Permission] = struct{}{}
	}
	return &Catalog{grants: m}
}

// DefaultCatalog mirrors the role_permissions seed migration. Used when
// no database-loaded grants are at hand (tests, tooling).
func DefaultCatalog() *Catalog {
	return NewCatalog([]Grant{
		{RoleAdmin, ManageBookings},
		{RoleAdmin, ManageOwnBookings},
		{RoleAdmin, ManageSpots},
		{RoleAdmin, ManageUsers},
		{RoleUser, ManageOwnBookings},
	})
}

// PermissionsFor returns the permission set for a role. Unknown roles
// get the empty set.
func (c *Catalog) PermissionsFor(role Role) PermissionSet {
	return c.grants[role]
}

// ValidRole reports whether the role is one of the known role names.
func ValidRole(role Role) bool {
	return role == RoleAdmin || role == RoleUser
}
