package domain

import "errors"

// ErrKind tags a domain error with its taxonomy bucket so the API layer can
// map it to the right HTTP status without string-sniffing in more than one
// place.
type ErrKind string

const (
	KindValidation ErrKind = "validation"
	KindNotFound   ErrKind = "not_found"
	KindConflict   ErrKind = "conflict"
	KindPermission ErrKind = "permission"
	KindState      ErrKind = "state"
)

// Error is the engine's single error type. Message contains the canonical
// phrase callers and tests match on.
type Error struct {
	Kind    ErrKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newErr(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// AsDomainError unwraps err into *Error if possible.
func AsDomainError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Validation errors.
func ErrEmpty(field string) *Error   { return newErr(KindValidation, field+" cannot be empty") }
func ErrTooLong(field string) *Error { return newErr(KindValidation, field+" is too long") }

var (
	ErrMalformedSlug  = newErr(KindValidation, "slug must be lowercase kebab-case")
	ErrMalformedCode  = newErr(KindValidation, "invite code is malformed")
	ErrMaxUsesBound   = newErr(KindValidation, "max_uses must be at least 1")

	// Not found.
	ErrAccountNotFound    = newErr(KindNotFound, "account not found")
	ErrCompanyNotFound    = newErr(KindNotFound, "company not found")
	ErrConnectionNotFound = newErr(KindNotFound, "connection not found")
	ErrProjectNotFound    = newErr(KindNotFound, "project not found")
	ErrInviteCodeInvalid  = newErr(KindNotFound, "invite code is invalid")
	ErrMembershipNotFound = newErr(KindNotFound, "membership not found")
	ErrNotificationNotFound = newErr(KindNotFound, "notification not found")

	// Conflict.
	ErrAccountAlreadyExists   = newErr(KindConflict, "account already exists")
	ErrSlugTaken              = newErr(KindConflict, "slug is already taken")
	ErrConnectionAlreadyExists = newErr(KindConflict, "connection already exists")
	ErrAlreadyInvited         = newErr(KindConflict, "company has already been invited")
	ErrAlreadyMember          = newErr(KindConflict, "already a member of this company")

	// Permission.
	ErrNotPermitted          = newErr(KindPermission, "not permitted")
	ErrCannotChangeOwnRole   = newErr(KindPermission, "cannot change your own role")
	ErrCannotRemoveSelf      = newErr(KindPermission, "cannot remove yourself")
	ErrCannotConnectToSelf   = newErr(KindPermission, "cannot connect to your own company")
	ErrCannotBlockSelf       = newErr(KindPermission, "cannot block your own company")
	ErrCannotInviteOwnCompany = newErr(KindPermission, "only the owner company can invite, and cannot invite itself")
	ErrCannotKickSelf        = newErr(KindPermission, "cannot kick your own company")
	ErrOwnerCannotLeave      = newErr(KindPermission, "owner company cannot leave")
	ErrOnlyRequesterCanCancel = newErr(KindPermission, "only the requester can cancel")
	ErrOnlyBlockerCanUnblock = newErr(KindPermission, "only the company that blocked it can unblock")
	ErrUseTransferOwnership  = newErr(KindPermission, "use transfer_ownership to assign Owner")
	ErrCannotAcceptOwnRequest = newErr(KindPermission, "cannot accept your own connection request")
	ErrOnlyOwnerCanInvite    = newErr(KindPermission, "only the owner company can invite")

	// State.
	ErrNotPending          = newErr(KindState, "connection is not pending")
	ErrBlockedConnection   = newErr(KindState, "connection is blocked")
	ErrNoPendingInvite     = newErr(KindState, "no pending invite for this project")
	ErrNoAcceptedConnection = newErr(KindState, "requires an accepted connection between the companies")
	ErrNotAProjectMember   = newErr(KindState, "not a member of this project")
)
