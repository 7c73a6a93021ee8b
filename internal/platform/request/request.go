// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/ctxutil"
	"github.com/sentra-id/sentra/internal/platform/sec"
	"github.com/sentra-id/sentra/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (UUID) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Claims extracts the authenticated actor claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the actor claims.

Returns:
  - *sec.AuthClaims: The authenticated actor claims
  - error: apperr.Unauthenticated if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {

	// Get actor claims
	claims := ctxutil.GetAuthUser(request.Context())

	// If the actor is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthenticated()
	}

	return claims, nil
}

/*
RequiredUserID returns the account ID of the currently logged-in actor.

Returns:
  - string: Account UUID
  - error: apperr.Unauthenticated if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {

	// Get actor claims
	claims, err := RequiredClaims(request)

	// If the actor is not authenticated, return an error
	if err != nil {
		return "", err
	}

	return claims.UserID(), nil
}
