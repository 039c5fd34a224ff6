package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace-service/internal/models"
)

func TestCanMutateListing(t *testing.T) {
	owner := models.User{ID: 1, Role: models.RoleRegistered}
	stranger := models.User{ID: 2, Role: models.RoleRegistered}
	admin := models.User{ID: 3, Role: models.RoleAdmin}
	listing := models.Listing{ID: 10, OwnerID: 1}

	assert.True(t, CanMutateListing(owner, listing).Allowed)
	assert.True(t, CanMutateListing(admin, listing).Allowed)

	d := CanMutateListing(stranger, listing)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonOwnerOnly, d.Reason)
}

func TestCanRate(t *testing.T) {
	owner := models.User{ID: 1}
	rater := models.User{ID: 2}
	listing := models.Listing{ID: 10, OwnerID: 1}

	tests := []struct {
		name         string
		user         models.User
		hasContacted bool
		alreadyRated bool
		wantAllowed  bool
		wantReason   string
		wantConflict bool
	}{
		{"owner cannot self-rate", owner, true, false, false, ReasonSelfRating, false},
		{"must contact first", rater, false, false, false, ReasonMustContactFirst, false},
		{"duplicate is a conflict", rater, true, true, false, ReasonDuplicateRating, true},
		{"contacted first-time rater allowed", rater, true, false, true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanRate(tt.user, listing, tt.hasContacted, tt.alreadyRated)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, tt.wantConflict, d.Conflict)
		})
	}
}

func TestCanMutateRating(t *testing.T) {
	rating := models.Rating{ID: 5, UserID: 2}

	assert.True(t, CanMutateRating(models.User{ID: 2}, rating).Allowed)
	assert.False(t, CanMutateRating(models.User{ID: 3}, rating).Allowed)
}

func TestRequireAdmin(t *testing.T) {
	assert.True(t, RequireAdmin(models.User{Role: models.RoleAdmin}).Allowed)

	d := RequireAdmin(models.User{Role: models.RoleRegistered})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonForbidden, d.Reason)
}

func TestCanDeleteUser(t *testing.T) {
	admin := models.User{ID: 1, Role: models.RoleAdmin}
	otherAdmin := models.User{ID: 2, Role: models.RoleAdmin}
	regular := models.User{ID: 3, Role: models.RoleRegistered}

	assert.True(t, CanDeleteUser(admin, regular).Allowed)

	d := CanDeleteUser(admin, otherAdmin)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonAdminProtected, d.Reason)

	assert.False(t, CanDeleteUser(regular, regular).Allowed)
}
