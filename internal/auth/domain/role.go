package domain

import (
	"errors"
	"fmt"
	"strings"
)

// RoleKind names one of the fixed roles known to the vendor portal.
type RoleKind string

const (
	RoleElikaAdmin  RoleKind = "elika_admin"
	RoleFinanceTeam RoleKind = "finance_team"
	RoleRecruiter   RoleKind = "recruiter"
	RoleVendorAdmin RoleKind = "vendor_admin"
	RoleVendorUser  RoleKind = "vendor_user"
)

var (
	ErrUnknownRole        = errors.New("unknown_role")
	ErrVendorRequired     = errors.New("vendor_required")
	ErrVendorNotPermitted = errors.New("vendor_not_permitted")
)

// VendorScoped reports whether roles of this kind belong to a single vendor.
func (k RoleKind) VendorScoped() bool {
	return k == RoleVendorAdmin || k == RoleVendorUser
}

// Privileged reports whether holders of this kind must enroll in 2FA.
func (k RoleKind) Privileged() bool {
	return k == RoleElikaAdmin || k == RoleFinanceTeam
}

func (k RoleKind) valid() bool {
	switch k {
	case RoleElikaAdmin, RoleFinanceTeam, RoleRecruiter, RoleVendorAdmin, RoleVendorUser:
		return true
	}
	return false
}

// Role is a role assignment. Staff roles never carry a vendor, vendor roles
// always do. The zero value is not a valid role; build one with NewStaffRole,
// NewVendorRole or ParseRole.
type Role struct {
	kind     RoleKind
	vendorID string
}

// NewStaffRole builds a role that is not tied to a vendor.
func NewStaffRole(kind RoleKind) (Role, error) {
	if !kind.valid() {
		return Role{}, fmt.Errorf("%w: %q", ErrUnknownRole, kind)
	}
	if kind.VendorScoped() {
		return Role{}, fmt.Errorf("%w: %s", ErrVendorRequired, kind)
	}
	return Role{kind: kind}, nil
}

// NewVendorRole builds a vendor-scoped role bound to vendorID.
func NewVendorRole(kind RoleKind, vendorID string) (Role, error) {
	if !kind.valid() {
		return Role{}, fmt.Errorf("%w: %q", ErrUnknownRole, kind)
	}
	if !kind.VendorScoped() {
		return Role{}, fmt.Errorf("%w: %s", ErrVendorNotPermitted, kind)
	}
	if strings.TrimSpace(vendorID) == "" {
		return Role{}, fmt.Errorf("%w: %s", ErrVendorRequired, kind)
	}
	return Role{kind: kind, vendorID: vendorID}, nil
}

// ParseRole builds a role from its stored or wire form. vendorID must be
// empty for staff kinds.
func ParseRole(kind, vendorID string) (Role, error) {
	k := RoleKind(kind)
	if k.VendorScoped() {
		return NewVendorRole(k, vendorID)
	}
	if vendorID != "" {
		if !k.valid() {
			return Role{}, fmt.Errorf("%w: %q", ErrUnknownRole, kind)
		}
		return Role{}, fmt.Errorf("%w: %s", ErrVendorNotPermitted, kind)
	}
	return NewStaffRole(k)
}

// MustRole is ParseRole for fixed values in tests and bootstrap code.
func MustRole(kind RoleKind, vendorID string) Role {
	r, err := ParseRole(string(kind), vendorID)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Role) Kind() RoleKind { return r.kind }

// VendorID returns the vendor affiliation and whether the role has one.
func (r Role) VendorID() (string, bool) {
	return r.vendorID, r.kind.VendorScoped()
}

func (r Role) String() string {
	if r.vendorID == "" {
		return string(r.kind)
	}
	return string(r.kind) + ":" + r.vendorID
}

// Roles is the ordered set of role assignments held by a user.
type Roles []Role

// Has reports whether any assignment is of the given kind.
func (rs Roles) Has(kind RoleKind) bool {
	for _, r := range rs {
		if r.kind == kind {
			return true
		}
	}
	return false
}

// HasAny reports whether any assignment matches one of kinds.
func (rs Roles) HasAny(kinds ...RoleKind) bool {
	for _, k := range kinds {
		if rs.Has(k) {
			return true
		}
	}
	return false
}

// Privileged reports whether any assignment requires 2FA enrollment.
func (rs Roles) Privileged() bool {
	for _, r := range rs {
		if r.kind.Privileged() {
			return true
		}
	}
	return false
}

// VendorIDs returns the distinct vendors the user is affiliated with.
func (rs Roles) VendorIDs() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range rs {
		if r.vendorID == "" {
			continue
		}
		if _, ok := seen[r.vendorID]; ok {
			continue
		}
		seen[r.vendorID] = struct{}{}
		out = append(out, r.vendorID)
	}
	return out
}

// Dedupe drops repeated assignments while keeping order.
func (rs Roles) Dedupe() Roles {
	out := make(Roles, 0, len(rs))
	seen := make(map[Role]struct{}, len(rs))
	for _, r := range rs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
