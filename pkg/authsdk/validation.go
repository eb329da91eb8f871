package authsdk

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	requiredReason = "required"

	minPasswordLength = 8
	maxPasswordLength = 128
)

var staffRoles = map[string]bool{
	"elika_admin":  true,
	"finance_team": true,
	"recruiter":    true,
}

var vendorRoles = map[string]bool{
	"vendor_admin": true,
	"vendor_user":  true,
}

// Validate checks the bootstrap fields. Returns a map of field names to
// error messages, or nil if all fields are valid.
func (b BootstrapRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateEmail(errs, "admin_email", b.AdminEmail)
	validatePassword(errs, "admin_password", b.AdminPassword)
	return nilIfEmpty(errs)
}

// Validate checks the new account fields, including every role assignment.
func (c CreateUserRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateEmail(errs, "email", c.Email)
	validatePassword(errs, "password", c.Password)
	validateRoles(errs, c.Roles)
	return nilIfEmpty(errs)
}

func (s SetRolesRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateRoles(errs, s.Roles)
	return nilIfEmpty(errs)
}

func validateEmail(errs map[string]string, field, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs[field] = requiredReason
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs[field] = "not a valid email address"
	}
}

func validatePassword(errs map[string]string, field, pw string) {
	switch {
	case pw == "":
		errs[field] = requiredReason
	case len(pw) < minPasswordLength:
		errs[field] = fmt.Sprintf("too short (min %d)", minPasswordLength)
	case len(pw) > maxPasswordLength:
		errs[field] = fmt.Sprintf("too long (max %d)", maxPasswordLength)
	}
}

func validateRoles(errs map[string]string, roles []RoleAssignment) {
	if len(roles) == 0 {
		errs["roles"] = "at least one role required"
		return
	}

	for i, r := range roles {
		key := fmt.Sprintf("roles[%d]", i)
		vendor := strings.TrimSpace(r.VendorID)
		switch {
		case staffRoles[r.Role]:
			if vendor != "" {
				errs[key] = fmt.Sprintf("%s does not take a vendor_id", r.Role)
			}
		case vendorRoles[r.Role]:
			if vendor == "" {
				errs[key] = fmt.Sprintf("%s requires a vendor_id", r.Role)
			}
		default:
			errs[key] = fmt.Sprintf("unknown role %q", r.Role)
		}
	}
}

func nilIfEmpty(errs map[string]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
