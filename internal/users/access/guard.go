// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package access

import (
	"context"
	"fmt"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/sec"
	"github.com/sentra-id/sentra/internal/users/auth"
)

// UserFinder resolves the target account of a guarded operation.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
}

// Guard runs the per-request authorization decision procedure.
type Guard struct {
	users UserFinder
}

// NewGuard constructs a [Guard] with its resource resolver.
func NewGuard(users UserFinder) *Guard {
	return &Guard{users: users}
}

/*
Check authorizes one operation for one actor.

Description: The decision procedure runs in a fixed order so every denial
carries the most specific failure class:

 1. No actor resolved: apperr.Unauthenticated.
 2. Actor carries an unrecognized role: apperr.Forbidden.
 3. The target resource does not exist: apperr.NotFound. Existence is
    resolved before rule evaluation so ownership conditions always see a
    concrete resource.
 4. Rule evaluation. Updates are all-or-nothing across the payload fields:
    the first denied field fails the whole request, and the denial names it.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims (nil when the request is anonymous)
  - operation: Operation
  - targetID: string (ignored unless the operation requires a target)
  - fields: []string (payload fields of an update; empty otherwise)

Returns:
  - error: nil when permitted, otherwise the taxonomy error described above
*/
func (guard *Guard) Check(context context.Context, claims *sec.AuthClaims, operation Operation, targetID string, fields []string) error {

	// ── 1. Actor Resolution ───────────────────────────────────────────────
	if claims == nil {
		return apperr.Unauthenticated()
	}

	role := sec.UserRole(claims.Role)
	if !role.Known() {
		return apperr.Forbidden("Account role is not recognized")
	}

	capability, ok := CapabilityOf(operation)
	if !ok {
		return apperr.Internal(fmt.Errorf("access_guard_unknown_operation: %s", operation))
	}

	// ── 2. Target Resolution ──────────────────────────────────────────────
	var target *Target
	if capability.RequiresTarget {
		user, err := guard.users.FindByID(context, targetID)
		if err != nil {
			return err
		}
		// A User resource owns itself.
		target = &Target{ID: user.ID, OwnerID: user.ID}
	}

	actorID := claims.UserID()

	// ── 3. Rule Evaluation ────────────────────────────────────────────────
	if len(fields) == 0 {
		if !Evaluate(actorID, role, capability.Action, capability.Subject, "", target) {
			return apperr.Forbidden(fmt.Sprintf(
				"You are not allowed to %s %s", capability.Action, capability.Subject))
		}
		return nil
	}

	for _, field := range fields {
		if !Evaluate(actorID, role, capability.Action, capability.Subject, field, target) {
			return apperr.Forbidden(fmt.Sprintf(
				"You are not allowed to %s the field %q on %s", capability.Action, field, capability.Subject))
		}
	}

	return nil
}
