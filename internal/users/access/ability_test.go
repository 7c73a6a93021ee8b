// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentra-id/sentra/internal/platform/sec"
	"github.com/sentra-id/sentra/internal/users/access"
)

const (
	actorID = "0191a0a0-0000-7000-8000-000000000001"
	otherID = "0191a0a0-0000-7000-8000-000000000002"
)

func ownTarget() *access.Target {
	return &access.Target{ID: actorID, OwnerID: actorID}
}

func otherTarget() *access.Target {
	return &access.Target{ID: otherID, OwnerID: otherID}
}

// abilityCase is one cell of a role's capability matrix.
type abilityCase struct {
	name    string
	action  access.Action
	field   string
	target  *access.Target
	allowed bool
}

func runMatrix(t *testing.T, role sec.UserRole, cases []abilityCase) {
	t.Helper()

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := access.Evaluate(actorID, role, tt.action, access.SubjectUser, tt.field, tt.target)
			assert.Equal(t, tt.allowed, got)
		})
	}
}

/*
TestEvaluate_UserRole covers the capability matrix of the default role:
actors own exactly one account and can only read and partially update it.
*/
func TestEvaluate_UserRole(t *testing.T) {
	runMatrix(t, sec.RoleUser, []abilityCase{
		{"read_own", access.ActionRead, "", ownTarget(), true},
		{"read_other", access.ActionRead, "", otherTarget(), false},
		{"list_class_level", access.ActionRead, "", nil, false},
		{"update_own_name", access.ActionUpdate, "name", ownTarget(), true},
		{"update_own_email", access.ActionUpdate, "email", ownTarget(), true},
		{"update_own_password", access.ActionUpdate, "password", ownTarget(), true},
		{"update_own_role", access.ActionUpdate, "role", ownTarget(), false},
		{"update_other_name", access.ActionUpdate, "name", otherTarget(), false},
		{"create", access.ActionCreate, "", nil, false},
		{"delete_own", access.ActionDelete, "", ownTarget(), false},
		{"delete_other", access.ActionDelete, "", otherTarget(), false},
	})
}

/*
TestEvaluate_TesterRole verifies that tester carries exactly the same grants
as the default user role.
*/
func TestEvaluate_TesterRole(t *testing.T) {
	runMatrix(t, sec.RoleTester, []abilityCase{
		{"read_own", access.ActionRead, "", ownTarget(), true},
		{"read_other", access.ActionRead, "", otherTarget(), false},
		{"list_class_level", access.ActionRead, "", nil, false},
		{"update_own_name", access.ActionUpdate, "name", ownTarget(), true},
		{"update_own_role", access.ActionUpdate, "role", ownTarget(), false},
		{"create", access.ActionCreate, "", nil, false},
		{"delete_own", access.ActionDelete, "", ownTarget(), false},
	})
}

/*
TestEvaluate_ManagerRole covers the manager matrix: read anyone, edit profile
fields of anyone, but never permissions, creation, or deletion.
*/
func TestEvaluate_ManagerRole(t *testing.T) {
	runMatrix(t, sec.RoleManager, []abilityCase{
		{"read_own", access.ActionRead, "", ownTarget(), true},
		{"read_other", access.ActionRead, "", otherTarget(), true},
		{"list_class_level", access.ActionRead, "", nil, true},
		{"update_other_name", access.ActionUpdate, "name", otherTarget(), true},
		{"update_other_email", access.ActionUpdate, "email", otherTarget(), true},
		{"update_other_password", access.ActionUpdate, "password", otherTarget(), true},
		{"update_other_role", access.ActionUpdate, "role", otherTarget(), false},
		{"update_own_role", access.ActionUpdate, "role", ownTarget(), false},
		{"update_class_level", access.ActionUpdate, "", nil, true},
		{"create", access.ActionCreate, "", nil, false},
		{"delete_other", access.ActionDelete, "", otherTarget(), false},
	})
}

/*
TestEvaluate_AdminRole verifies the wildcard grant: every action on every
subject, own or not, including the role field.
*/
func TestEvaluate_AdminRole(t *testing.T) {
	runMatrix(t, sec.RoleAdmin, []abilityCase{
		{"read_other", access.ActionRead, "", otherTarget(), true},
		{"list_class_level", access.ActionRead, "", nil, true},
		{"update_other_role", access.ActionUpdate, "role", otherTarget(), true},
		{"create", access.ActionCreate, "", nil, true},
		{"delete_other", access.ActionDelete, "", otherTarget(), true},
	})
}

/*
TestEvaluate_UnknownRole verifies default-deny for roles with no rule list.
*/
func TestEvaluate_UnknownRole(t *testing.T) {
	assert.False(t, access.Evaluate(actorID, sec.UserRole("superuser"), access.ActionRead, access.SubjectUser, "", ownTarget()))
}

/*
TestEvaluate_WildcardSubject verifies that the admin manage-all rule matches
arbitrary subjects, not just User.
*/
func TestEvaluate_WildcardSubject(t *testing.T) {
	assert.True(t, access.Evaluate(actorID, sec.RoleAdmin, access.ActionDelete, access.Subject("Report"), "", nil))
	assert.False(t, access.Evaluate(actorID, sec.RoleManager, access.ActionRead, access.Subject("Report"), "", nil))
}
