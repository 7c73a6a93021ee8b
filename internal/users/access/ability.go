// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

/*
Package access implements attribute- and field-level authorization.

It evaluates an actor's role against an ordered per-role rule list, then
guards HTTP operations with a uniform decision procedure.

Architecture:

  - Ability: Pure rule evaluation (no I/O). Deny rules override allow rules,
    and anything no rule speaks for is denied.
  - Operations: An explicit table mapping each guarded endpoint to its
    action, subject, and permitted field set.
  - Guard: The request-time decision procedure, including target resource
    resolution and per-field update checks.
*/
package access

import (
	"slices"

	"github.com/sentra-id/sentra/internal/platform/sec"
)

// # Vocabulary

// Action is a capability verb an actor may hold over a subject.
type Action string

const (
	// ActionManage is the wildcard action. It matches every other action.
	ActionManage Action = "manage"

	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Subject is the resource class a rule speaks about.
type Subject string

const (
	// SubjectAll is the wildcard subject. It matches every other subject.
	SubjectAll Subject = "all"

	SubjectUser Subject = "User"
)

// Effect decides whether a matching rule grants or revokes the capability.
type Effect int

const (
	Allow Effect = iota
	Deny
)

// Condition scopes a rule to the relationship between actor and target.
type Condition int

const (
	// Unconditional rules apply regardless of the target.
	Unconditional Condition = iota

	// OwnResource matches only when the actor is the target's owner.
	OwnResource

	// NotOwnResource matches only when the actor is NOT the target's owner.
	NotOwnResource
)

// Rule is a single entry in a role's ability list.
//
// An empty Fields slice means the rule covers the whole subject. A non-empty
// slice scopes the rule to exactly those fields.
type Rule struct {
	Effect    Effect
	Action    Action
	Subject   Subject
	Fields    []string
	Condition Condition
}

// Target identifies the concrete resource an access check is about.
//
// OwnerID is the actor ID that owns the resource. For User subjects the
// resource owns itself, so OwnerID equals ID.
type Target struct {
	ID      string
	OwnerID string
}

// # Role Abilities

// RulesFor returns the ordered ability list of a role.
//
// Unknown roles get no rules at all, which the default-deny evaluation turns
// into a blanket denial.
func RulesFor(role sec.UserRole) []Rule {
	switch role {
	case sec.RoleAdmin:
		return []Rule{
			{Effect: Allow, Action: ActionManage, Subject: SubjectAll},
		}

	case sec.RoleManager:
		return []Rule{
			{Effect: Allow, Action: ActionRead, Subject: SubjectUser},
			{Effect: Allow, Action: ActionUpdate, Subject: SubjectUser, Fields: []string{"name", "email", "password"}},
			{Effect: Deny, Action: ActionUpdate, Subject: SubjectUser, Fields: []string{"role"}},
			{Effect: Deny, Action: ActionCreate, Subject: SubjectUser},
			{Effect: Deny, Action: ActionDelete, Subject: SubjectUser},
		}

	case sec.RoleUser, sec.RoleTester:
		return []Rule{
			{Effect: Allow, Action: ActionRead, Subject: SubjectUser, Condition: OwnResource},
			{Effect: Allow, Action: ActionUpdate, Subject: SubjectUser, Fields: []string{"name", "email", "password"}, Condition: OwnResource},
			{Effect: Deny, Action: ActionUpdate, Subject: SubjectUser, Fields: []string{"role"}},
			{Effect: Deny, Action: ActionRead, Subject: SubjectUser, Condition: NotOwnResource},
			{Effect: Deny, Action: ActionCreate, Subject: SubjectUser},
			{Effect: Deny, Action: ActionDelete, Subject: SubjectUser},
		}
	}

	return nil
}

// # Evaluation

// matches reports whether the rule speaks for this particular check at all.
func (rule Rule) matches(actorID string, action Action, subject Subject, field string, target *Target) bool {

	// Wildcard-aware action and subject comparison
	if rule.Action != ActionManage && rule.Action != action {
		return false
	}
	if rule.Subject != SubjectAll && rule.Subject != subject {
		return false
	}

	// Conditional rules need a concrete target to be evaluated against. A
	// class-level check (no target) is not something they can speak for.
	switch rule.Condition {
	case OwnResource:
		if target == nil || target.OwnerID != actorID {
			return false
		}
	case NotOwnResource:
		if target == nil || target.OwnerID == actorID {
			return false
		}
	}

	// Field scoping. A field-scoped allow rule still answers the class-level
	// question "may this actor perform the action at all", while a
	// field-scoped deny only fires for the fields it names.
	if len(rule.Fields) > 0 {
		if field == "" {
			return rule.Effect == Allow
		}
		return slices.Contains(rule.Fields, field)
	}

	return true
}

/*
Evaluate decides whether an actor may perform an action.

Description: Walks the actor's rule list collecting every rule that matches
the (action, subject, field, target) tuple. Any matching deny rule wins over
any number of allows, and a check no rule matches is denied.

Parameters:
  - actorID: string (the acting account ID, used by ownership conditions)
  - role: sec.UserRole
  - action: Action
  - subject: Subject
  - field: string (empty for whole-subject checks)
  - target: *Target (nil for class-level checks)

Returns:
  - bool: true when the action is permitted
*/
func Evaluate(actorID string, role sec.UserRole, action Action, subject Subject, field string, target *Target) bool {
	allowed := false

	for _, rule := range RulesFor(role) {
		if !rule.matches(actorID, action, subject, field, target) {
			continue
		}
		if rule.Effect == Deny {
			return false
		}
		allowed = true
	}

	return allowed
}
