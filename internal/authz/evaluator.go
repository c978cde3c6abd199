package authz

import "errors"

// ErrDenied is returned by domain services when the evaluator denies an
// action for an authenticated principal. Handlers map it to 403.
var ErrDenied = errors.New("permission denied")

// Can evaluates whether the principal may perform the action. For create,
// list and retrieve the object state is ignored and may be the zero value.
//
// The decision table, first match wins:
//
//	superuser                     -> allow everything
//	create                        -> teacher only; moderators always denied
//	delete                        -> owner while unapproved; moderators always denied
//	update                        -> moderator, or owner while unapproved
//	list/retrieve                 -> any authenticated principal
//
// Which objects a listing actually returns is narrowed separately by Visible;
// this gate only says whether the operation itself is permitted.
func Can(p *Principal, action Action, state ObjectState) bool {
	if p == nil {
		return false
	}
	if p.Superuser {
		return true
	}

	switch action {
	case ActionCreate:
		if p.Roles.Has(RoleModerator) {
			return false
		}
		return p.Roles.Has(RoleTeacher)

	case ActionDelete:
		if p.Roles.Has(RoleModerator) {
			return false
		}
		return state.Owned(p) && !state.Approved()

	case ActionUpdate:
		if p.Roles.Has(RoleModerator) {
			return true
		}
		return state.Owned(p) && !state.Approved()

	case ActionList, ActionRetrieve:
		return true
	}

	return false
}
