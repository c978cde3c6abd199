package authz

type scopeKind int

const (
	scopeNone scopeKind = iota
	scopeAll
	scopeOwned
	scopeApproved
)

// Scope describes the universe of objects a principal's list or retrieve
// call may return. Repositories translate it into a WHERE clause before
// pagination; it is independent of the per-object Can decision.
type Scope struct {
	kind    scopeKind
	ownerID int64
}

// Visible computes the visibility scope for a principal. Superusers and
// moderators see everything, teachers see what they own, students see
// approved objects, and a principal with no recognized role sees nothing.
func Visible(p *Principal) Scope {
	switch {
	case p == nil:
		return Scope{kind: scopeNone}
	case p.Superuser, p.Roles.Has(RoleModerator):
		return Scope{kind: scopeAll}
	case p.Roles.Has(RoleTeacher):
		return Scope{kind: scopeOwned, ownerID: p.UserID}
	case p.Roles.Has(RoleStudent):
		return Scope{kind: scopeApproved}
	}
	return Scope{kind: scopeNone}
}

// All reports whether the scope is unrestricted.
func (s Scope) All() bool { return s.kind == scopeAll }

// None reports whether the scope is empty.
func (s Scope) None() bool { return s.kind == scopeNone }

// OwnedBy returns the owner constraint, if any.
func (s Scope) OwnedBy() (int64, bool) {
	return s.ownerID, s.kind == scopeOwned
}

// ApprovedOnly reports whether only approved objects are visible.
func (s Scope) ApprovedOnly() bool { return s.kind == scopeApproved }

// Allows reports whether a single object falls inside the scope. Used for
// retrieve-by-id paths where the row is already loaded.
func (s Scope) Allows(state ObjectState) bool {
	switch s.kind {
	case scopeAll:
		return true
	case scopeOwned:
		return state.OwnerID == s.ownerID
	case scopeApproved:
		return state.Approved()
	}
	return false
}

// Filter narrows a loaded collection to the visible subset. List endpoints
// filter in SQL instead; this helper serves the few in-memory paths.
func Filter[T any](p *Principal, objects []T, state func(T) ObjectState) []T {
	scope := Visible(p)
	if scope.All() {
		return objects
	}
	visible := make([]T, 0, len(objects))
	for _, obj := range objects {
		if scope.Allows(state(obj)) {
			visible = append(visible, obj)
		}
	}
	return visible
}
