// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

// HTTP delivery layer for the authentication lifecycle.
//
// # Architecture
//
// The handler acts as a thin mediation layer between the web and domain services:
//   - Protocol: Standard RESTful JSON interface.
//   - Security: Handles JWT orchestration and refresh token cookie injection.
//   - Verification: Enforces strict input validation before passing to [Service].
//
// This layer is strictly responsible for transport concerns (status codes, headers, JSON).

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/constants"
	"github.com/sentra-id/sentra/internal/platform/middleware"
	requestutil "github.com/sentra-id/sentra/internal/platform/request"
	"github.com/sentra-id/sentra/internal/platform/respond"
	"github.com/sentra-id/sentra/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the session lifecycle entry points
// (Login, Refresh, Logout, Password Recovery).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /login   : Authenticates and returns a JWT.
//   - POST /refresh : Rotates the refresh token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/validate-reset-token", handler.validateResetToken)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type validateResetTokenRequest struct {
	Token string `json:"token"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// setRefreshCookie injects the rotating refresh token as a scoped HttpOnly cookie.
func setRefreshCookie(writer http.ResponseWriter, refreshToken string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    refreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  time.Now().Add(RefreshTokenCookieTTL),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie removes the refresh token cookie from the client.
func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, generates a JWT access token, and injects
a secure refresh token cookie into the response.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Access token and User profile
  - 401: INVALID_CREDENTIALS: Unknown email or wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   AccessTokenTTL / time.Second,
		FieldUser:        session.User,
	})
}

/*
Refresh issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh

Description: Rotates the session by validating the refresh token cookie
and issuing a fresh access token and an updated refresh token. The presented
token is consumed even if this response is lost.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: INVALID_REFRESH_TOKEN: Missing, replayed, or superseded token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.InvalidRefreshToken())
		return
	}

	session, err := handler.authService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   AccessTokenTTL / time.Second,
	})
}

/*
Logout terminates the current user session.

POST /api/v1/auth/logout

Description: Invalidates the actor's stored refresh token and clears the
security cookie from the client. Idempotent.

Response:
  - 204: No Content: Session terminated
  - 401: UNAUTHENTICATED: Missing or invalid access token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), actorID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearRefreshCookie(writer)

	respond.NoContent(writer)
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Sends a password reset link to the provided email if the account
exists. The response never reveals whether it does.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Generic acknowledgement
  - 502: EMAIL_DELIVERY_FAILED: The reset state was stored but mail delivery failed
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

/*
ValidateResetToken pre-checks a reset token for a recovery form.

POST /api/v1/auth/validate-reset-token

Description: Reports whether the token would be accepted, without consuming it.

Request:
  - Body: validateResetTokenRequest (Token)

Response:
  - 200: Success: Token is valid
  - 400: INVALID_RESET_TOKEN / EXPIRED_RESET_TOKEN
*/
func (handler *Handler) validateResetToken(writer http.ResponseWriter, request *http.Request) {
	var input validateResetTokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	if err := handler.authService.ValidateResetToken(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Reset token is valid",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Description: Validates the reset token and updates the user's password. The
token is consumed and the account's active session is revoked.

Request:
  - Body: resetPasswordRequest (Token, Password)

Response:
  - 200: Success: Password updated
  - 400: INVALID_RESET_TOKEN / EXPIRED_RESET_TOKEN / validation failure
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}
