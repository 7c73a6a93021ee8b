// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

// HTTP delivery layer for account administration.
//
// # Security
//
// All endpoints require an authenticated actor, and every request passes the
// access guard before reaching the service. Update payloads are checked
// field by field; a single forbidden field rejects the whole request.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentra-id/sentra/internal/platform/middleware"
	requestutil "github.com/sentra-id/sentra/internal/platform/request"
	"github.com/sentra-id/sentra/internal/platform/respond"
	"github.com/sentra-id/sentra/internal/platform/sec"
	"github.com/sentra-id/sentra/internal/platform/validate"
	"github.com/sentra-id/sentra/internal/users/access"
	"github.com/sentra-id/sentra/internal/users/auth"
	"github.com/sentra-id/sentra/pkg/pagination"
)

// Handler implements the HTTP layer for account administration.
type Handler struct {
	accountService *Service
	guard          *access.Guard
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, guard *access.Guard) *Handler {
	return &Handler{accountService: service, guard: guard}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

// # Request Payloads

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

/*
Create provisions a new account.

POST /api/v1/users

Response:
  - 201: User: Created account
  - 403: FORBIDDEN: Actor may not create accounts
  - 409: CONFLICT: Email already registered
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)

	if err := handler.guard.Check(request.Context(), claims, access.OpUserCreate, "", nil); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldName, input.Name).
		Required(auth.FieldEmail, input.Email).
		Email(auth.FieldEmail, input.Email).
		Required(auth.FieldPassword, input.Password).
		MinLen(auth.FieldPassword, input.Password, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Create(request.Context(), CreateInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     sec.UserRole(input.Role),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
List returns a paginated page of accounts.

GET /api/v1/users?page=&limit=

Response:
  - 200: []User with pagination metadata
  - 403: FORBIDDEN: Actor may not list accounts
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)

	if err := handler.guard.Check(request.Context(), claims, access.OpUserList, "", nil); err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	users, meta, err := handler.accountService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, meta)
}

/*
Get retrieves a single account.

GET /api/v1/users/{id}

Response:
  - 200: User: Hydrated account
  - 403: FORBIDDEN: Actor may not read this account
  - 404: NOT_FOUND: No such account
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)
	targetID := requestutil.ID(request, "id")

	if err := handler.guard.Check(request.Context(), claims, access.OpUserRead, targetID, nil); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Get(request.Context(), targetID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Update applies a partial change to an account.

PATCH /api/v1/users/{id}

Description: The set of fields present in the payload is authorized as a
whole before anything is written. A payload touching a forbidden field is
rejected entirely, and the denial names the field.

Response:
  - 200: User: Updated account
  - 403: FORBIDDEN: A payload field is not permitted for this actor
  - 404: NOT_FOUND: No such account
  - 409: CONFLICT: Email already registered
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)
	targetID := requestutil.ID(request, "id")

	var payload updateRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input := UpdateInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.Role,
	}

	if err := handler.guard.Check(request.Context(), claims, access.OpUserUpdate, targetID, input.Fields()); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if payload.Email != nil {
		validator.Email(auth.FieldEmail, *payload.Email)
	}
	if payload.Password != nil {
		validator.MinLen(auth.FieldPassword, *payload.Password, 8)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Update(request.Context(), targetID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Delete removes an account.

DELETE /api/v1/users/{id}

Response:
  - 204: No Content: Account deleted, outstanding tokens revoked
  - 403: FORBIDDEN: Actor may not delete accounts
  - 404: NOT_FOUND: No such account
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)
	targetID := requestutil.ID(request, "id")

	if err := handler.guard.Check(request.Context(), claims, access.OpUserDelete, targetID, nil); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Delete(request.Context(), targetID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
