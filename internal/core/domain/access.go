package domain

// Principal is the authenticated caller, as extracted from a validated token.
// It is passed explicitly into every authorization-sensitive operation.
type Principal struct {
	ID       string
	Username string
	Roles    []string
}

// HasRole reports membership; role names are compared case-sensitively.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) hasAnyRole(roles []string) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// IsStaff reports whether the caller holds admin or support.
func (p Principal) IsStaff() bool {
	return p.HasRole(RoleAdmin) || p.HasRole(RoleSupport)
}

// Operation names a protected action.
type Operation string

const (
	OpListAllTickets Operation = "tickets.list_all"
	OpListOwnTickets Operation = "tickets.list_own"
	OpReadTicket     Operation = "tickets.read"
	OpCreateTicket   Operation = "tickets.create"
	OpUpdateTicket   Operation = "tickets.update"
	OpDeleteTicket   Operation = "tickets.delete"
	OpReadResponses  Operation = "responses.read"
	OpCreateResponse Operation = "responses.create"
	OpDeleteResponse Operation = "responses.delete"
	OpManageRoles    Operation = "roles.manage"
	OpManageUsers    Operation = "users.manage"
)

type ownershipRule int

const (
	ownershipNone ownershipRule = iota
	// ownershipOwnerOrStaff allows admin/support or the resource owner.
	ownershipOwnerOrStaff
	// ownershipClientMustOwn restricts callers whose only policy role is
	// client to resources they own.
	ownershipClientMustOwn
)

type policy struct {
	roles     []string // nil means any authenticated principal
	ownership ownershipRule
}

var policies = map[Operation]policy{
	OpListAllTickets: {roles: []string{RoleAdmin, RoleSupport}},
	OpListOwnTickets: {roles: []string{RoleClient, RoleAdmin}},
	OpReadTicket:     {ownership: ownershipOwnerOrStaff},
	OpCreateTicket:   {roles: []string{RoleClient, RoleAdmin}},
	OpUpdateTicket:   {roles: []string{RoleAdmin, RoleSupport}},
	OpDeleteTicket:   {roles: []string{RoleAdmin}},
	OpReadResponses:  {ownership: ownershipOwnerOrStaff},
	OpCreateResponse: {roles: []string{RoleAdmin, RoleSupport, RoleClient}, ownership: ownershipClientMustOwn},
	OpDeleteResponse: {roles: []string{RoleAdmin}},
	OpManageRoles:    {roles: []string{RoleAdmin}},
	OpManageUsers:    {roles: []string{RoleAdmin}},
}

// Authorize applies the role phase of the policy for op. Operations without
// a policy entry are denied.
func Authorize(p Principal, op Operation) error {
	if p.ID == "" {
		return ErrUnauthenticated
	}
	pol, ok := policies[op]
	if !ok {
		return ErrForbidden
	}
	if pol.roles != nil && !p.hasAnyRole(pol.roles) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeOwner applies the ownership phase of the policy for op against
// the owner of an existing resource. Callers must establish existence first.
func AuthorizeOwner(p Principal, op Operation, ownerID string) error {
	pol, ok := policies[op]
	if !ok {
		return ErrForbidden
	}
	switch pol.ownership {
	case ownershipOwnerOrStaff:
		if p.IsStaff() || ownerID == p.ID {
			return nil
		}
		return ErrForbidden
	case ownershipClientMustOwn:
		if p.HasRole(RoleClient) && !p.IsStaff() && ownerID != p.ID {
			return ErrForbidden
		}
		return nil
	default:
		return nil
	}
}
