// Package authz holds the stateless authorization predicates. Every check
// takes the acting user and the facts it needs as explicit values; nothing
// is read from ambient request state.
package authz

import "marketplace-service/internal/models"

// Reason codes surfaced to callers on deny.
const (
	ReasonOwnerOnly        = "owner_only"
	ReasonSelfRating       = "self_rating_forbidden"
	ReasonMustContactFirst = "must_contact_first"
	ReasonDuplicateRating  = "duplicate_rating"
	ReasonForbidden        = "forbidden"
	ReasonAdminProtected   = "admin_protected"
)

// Decision is the outcome of a gate check. Conflict marks denials that are
// resource conflicts (409) rather than permission failures (403).
type Decision struct {
	Allowed  bool
	Reason   string
	Conflict bool
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// CanMutateListing permits the owner or an admin.
func CanMutateListing(user models.User, listing models.Listing) Decision {
	if user.ID == listing.OwnerID || user.IsAdmin() {
		return allow()
	}
	return deny(ReasonOwnerOnly)
}

// CanRate applies the rating rules: no self-rating, contact before rating,
// one rating per user per listing. hasContacted and alreadyRated are the
// fast-path facts; the database constraint stays authoritative for
// duplicates under concurrency.
func CanRate(user models.User, listing models.Listing, hasContacted, alreadyRated bool) Decision {
	if user.ID == listing.OwnerID {
		return deny(ReasonSelfRating)
	}
	if !hasContacted {
		return deny(ReasonMustContactFirst)
	}
	if alreadyRated {
		return Decision{Reason: ReasonDuplicateRating, Conflict: true}
	}
	return allow()
}

// CanMutateRating permits only the rating's author.
func CanMutateRating(user models.User, rating models.Rating) Decision {
	if user.ID == rating.UserID {
		return allow()
	}
	return deny(ReasonOwnerOnly)
}

// RequireAdmin permits only admins.
func RequireAdmin(user models.User) Decision {
	if user.IsAdmin() {
		return allow()
	}
	return deny(ReasonForbidden)
}

// CanDeleteUser forbids removing admin accounts through user management.
func CanDeleteUser(actor models.User, target models.User) Decision {
	if d := RequireAdmin(actor); !d.Allowed {
		return d
	}
	if target.IsAdmin() {
		return deny(ReasonAdminProtected)
	}
	return allow()
}
