package rbac

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCatalog_PermissionsFor(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("admin holds every permission", func(t *testing.T) {
		perms := catalog.PermissionsFor(RoleAdmin)
		assert.True(t, perms.Has(ManageBookings))
		assert.True(t, perms.Has(ManageOwnBookings))
		assert.True(t, perms.Has(ManageSpots))
		assert.True(t, perms.Has(ManageUsers))
	})

	t.Run("user holds only own-scoped booking permission", func(t *testing.T) {
		perms := catalog.PermissionsFor(RoleUser)
		assert.True(t, perms.Has(ManageOwnBookings))
		assert.False(t, perms.Has(ManageBookings))
		assert.False(t, perms.Has(ManageSpots))
		assert.False(t, perms.Has(ManageUsers))
	})

	t.Run("unknown role gets empty set", func(t *testing.T) {
		perms := catalog.PermissionsFor(Role("intruder"))
		assert.False(t, perms.Has(ManageOwnBookings))
		assert.Len(t, perms, 0)
	})
}

func TestAuthorizer_Authorize(t *testing.T) {
	authz := NewAuthorizer(DefaultCatalog())
	owner := uuid.New()
	stranger := uuid.New()
	required := RequiredAny{Full: ManageBookings, Own: ManageOwnBookings}

	tests := []struct {
		name  string
		actor Actor
		owner uuid.UUID
		want  bool
	}{
		{"admin on any resource", Actor{ID: stranger, Role: RoleAdmin}, owner, true},
		{"admin on own resource", Actor{ID: owner, Role: RoleAdmin}, owner, true},
		{"user on own resource", Actor{ID: owner, Role: RoleUser}, owner, true},
		{"user on foreign resource", Actor{ID: stranger, Role: RoleUser}, owner, false},
		{"unknown role on own resource", Actor{ID: owner, Role: Role("ghost")}, owner, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authz.Authorize(tt.actor, required, tt.owner))
		})
	}
}

func TestAuthorizer_AuthorizeGlobal(t *testing.T) {
	authz := NewAuthorizer(DefaultCatalog())

	assert.True(t, authz.AuthorizeGlobal(Actor{ID: uuid.New(), Role: RoleAdmin}, ManageSpots))
	assert.False(t, authz.AuthorizeGlobal(Actor{ID: uuid.New(), Role: RoleUser}, ManageSpots))
	assert.False(t, authz.AuthorizeGlobal(Actor{ID: uuid.New(), Role: RoleUser}, ManageUsers))
}

func TestNewCatalog_FromGrants(t *testing.T) {
	catalog := NewCatalog([]Grant{
		{Role("operator"), ManageBookings},
		{Role("operator"), ManageSpots},
	})

	perms := catalog.PermissionsFor(Role("operator"))
	assert.True(t, perms.Has(ManageBookings))
	assert.True(t, perms.Has(ManageSpots))
	assert.False(t, perms.Has(ManageUsers))
}
