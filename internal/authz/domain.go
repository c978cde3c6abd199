// Package authz implements the authorization rules for course content.
//
// All decisions are pure functions over a Principal (built once per request
// by the auth middleware) and the state of the object under evaluation. The
// package never touches storage.
package authz

// Role is a named role held by a user.
type Role string

const (
	RoleModerator Role = "moderator"
	RoleTeacher   Role = "teacher"
	RoleStudent   Role = "student"
)

// Roles is the set of named roles held by a principal. Roles are not
// mutually exclusive in the data; policy resolves overlaps with the
// precedence moderator > teacher > student.
type Roles map[Role]struct{}

// ResolveRoles builds a Roles set from stored role names. Unknown names are
// ignored rather than rejected: an unrecognized role grants nothing.
func ResolveRoles(names []string) Roles {
	set := make(Roles, len(names))
	for _, name := range names {
		switch Role(name) {
		case RoleModerator, RoleTeacher, RoleStudent:
			set[Role(name)] = struct{}{}
		}
	}
	return set
}

// Has reports whether the set contains the role.
func (r Roles) Has(role Role) bool {
	_, ok := r[role]
	return ok
}

// Names returns the role names in precedence order, for serialization.
func (r Roles) Names() []string {
	names := make([]string, 0, len(r))
	for _, role := range []Role{RoleModerator, RoleTeacher, RoleStudent} {
		if r.Has(role) {
			names = append(names, string(role))
		}
	}
	return names
}

// Principal describes the authenticated actor. Superuser is a distinct flag,
// not a role; the evaluator treats it as all permissions granted.
type Principal struct {
	UserID    int64
	Email     string
	Superuser bool
	Roles     Roles
}

// Action is an operation requested against an ownable object.
type Action int

const (
	ActionList Action = iota
	ActionRetrieve
	ActionCreate
	ActionUpdate
	ActionDelete
)

// Status is the approval status of an ownable object.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// ObjectState reports the authorization-relevant facts about an object:
// who owns it and whether it has been approved. The owner never changes
// after creation; status is read here, never written.
type ObjectState struct {
	OwnerID int64
	Status  Status
}

// Owned reports whether the principal owns the object.
func (s ObjectState) Owned(p *Principal) bool {
	return p != nil && s.OwnerID == p.UserID
}

// Approved reports whether the object has been approved. Draft and pending
// both count as unapproved.
func (s ObjectState) Approved() bool {
	return s.Status == StatusApproved
}
