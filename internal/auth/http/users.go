package http

import (
	"net/http"

	"github.com/aussiebroadwan/vendorauth/internal/auth/service"
	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

// UsersHandler serves account administration. Every route requires
// elika_admin.
type UsersHandler struct {
	Users *service.UserService
}

// HandleCreate handles POST /v1/users
//
//	@Summary		Create a user
//	@Description	Creates an active, unverified account and sends the verification link.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.CreateUserRequest	true	"Account details"
//	@Success		201		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.ValidationErrorResponse
//	@Failure		403		{object}	authsdk.ErrorResponse	"Requires elika_admin"
//	@Failure		409		{object}	authsdk.ErrorResponse	"EMAIL_TAKEN"
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		writeValidation(w, errs)
		return
	}

	roles, err := rolesFromSDK(req.Roles)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Users.Register(r.Context(), service.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Roles:    roles,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("user created", "new_user_id", user.ID, "roles", len(user.Roles))
	httpx.WriteJSON(w, http.StatusCreated, userToSDK(user))
}

// HandleSetRoles handles PUT /v1/users/{id}/roles
//
//	@Summary		Replace a user's roles
//	@Description	The new assignment takes effect on the user's next request. Gaining a privileged role makes 2FA enrollment mandatory.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"User ID"
//	@Param			body	body		authsdk.SetRolesRequest	true	"Role assignments"
//	@Success		200		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.ValidationErrorResponse
//	@Failure		404		{object}	authsdk.ErrorResponse	"USER_NOT_FOUND"
//	@Router			/v1/users/{id}/roles [put].
func (h *UsersHandler) HandleSetRoles(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SetRolesRequest
	if !decode(w, r, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		writeValidation(w, errs)
		return
	}

	roles, err := rolesFromSDK(req.Roles)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Users.SetRoles(r.Context(), r.PathValue("id"), roles)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userToSDK(user))
}

// HandleDeactivate handles POST /v1/users/{id}/deactivate
//
//	@Summary		Deactivate a user
//	@Description	Blocks login and ends every session of the account.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"Deactivated"
//	@Failure		404	{object}	authsdk.ErrorResponse	"USER_NOT_FOUND"
//	@Router			/v1/users/{id}/deactivate [post].
func (h *UsersHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleActivate handles POST /v1/users/{id}/activate
//
//	@Summary		Reactivate a user
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"Activated"
//	@Failure		404	{object}	authsdk.ErrorResponse	"USER_NOT_FOUND"
//	@Router			/v1/users/{id}/activate [post].
func (h *UsersHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Activate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VendorAccessHandler answers whether the caller may act on a vendor.
// The decision is made by httpx.RequireVendorScope in front of it.
//
//	@Summary		Check vendor access
//	@Description	For other portal services: 204 if the caller's roles reach the vendor, 403 otherwise. Staff roles reach every vendor.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			vendorID	path	string	true	"Vendor ID"
//	@Success		204			"Access granted"
//	@Failure		403			{object}	authsdk.ErrorResponse	"FORBIDDEN"
//	@Router			/v1/vendors/{vendorID}/access [get].
func VendorAccessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
