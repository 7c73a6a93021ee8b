// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package access

// Operation names a guarded endpoint behavior.
//
// The mapping from operation to capability lives in a single explicit table
// rather than in per-route annotations, so the authorization surface can be
// reviewed in one place.
type Operation string

const (
	OpUserCreate Operation = "user:create"
	OpUserList   Operation = "user:list"
	OpUserRead   Operation = "user:read"
	OpUserUpdate Operation = "user:update"
	OpUserDelete Operation = "user:delete"
)

// Capability is what an operation demands from the ability engine.
type Capability struct {
	Action  Action
	Subject Subject

	// RequiresTarget marks operations acting on one concrete resource. The
	// guard resolves the resource first so ownership conditions can apply;
	// operations without a target are checked at class level.
	RequiresTarget bool
}

// operationTable is the complete authorization surface.
var operationTable = map[Operation]Capability{
	OpUserCreate: {Action: ActionCreate, Subject: SubjectUser},
	OpUserList:   {Action: ActionRead, Subject: SubjectUser},
	OpUserRead:   {Action: ActionRead, Subject: SubjectUser, RequiresTarget: true},
	OpUserUpdate: {Action: ActionUpdate, Subject: SubjectUser, RequiresTarget: true},
	OpUserDelete: {Action: ActionDelete, Subject: SubjectUser, RequiresTarget: true},
}

// CapabilityOf resolves an operation to its demanded capability.
func CapabilityOf(operation Operation) (Capability, bool) {
	capability, ok := operationTable[operation]
	return capability, ok
}
