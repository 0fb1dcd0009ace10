// Package ownership centralizes the "is this yours" check that every
// mutating handler runs after loading a resource.
package ownership

import (
	"reflect"

	"github.com/cinetrack/cinetrack/internal/apierr"
	"github.com/cinetrack/cinetrack/internal/auth"
)

// Owned is any resource that knows which account created it.
type Owned interface {
	OwnerID() uint
}

// AssertOwner returns NotFound when the resource is absent and
// Forbidden when it belongs to someone else. Absence is checked
// before ownership so callers can pass the result of a lookup
// straight through without special-casing nil.
func AssertOwner(ident auth.Identity, resource Owned, kind string) error {
	if resource == nil || isNilPointer(resource) {
		return apierr.NewNotFoundError(kind)
	}
	if resource.OwnerID() != ident.ID {
		return apierr.NewForbiddenError(kind + " belongs to another account")
	}
	return nil
}

// isNilPointer catches the typed-nil case, where a nil *Review stored
// in an Owned interface compares non-nil.
func isNilPointer(v Owned) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
