package domain

import (
	"errors"
	"testing"
)

func principal(id string, roles ...string) Principal {
	return Principal{ID: id, Username: id, Roles: roles}
}

func TestAuthorize_RoleTable(t *testing.T) {
	admin := principal("u-admin", RoleAdmin)
	support := principal("u-support", RoleSupport)
	client := principal("u-client", RoleClient)
	viewer := principal("u-viewer", "viewer")

	cases := []struct {
		op      Operation
		p       Principal
		allowed bool
	}{
		{OpListAllTickets, admin, true},
		{OpListAllTickets, support, true},
		{OpListAllTickets, client, false},
		{OpListOwnTickets, client, true},
		{OpListOwnTickets, admin, true},
		{OpListOwnTickets, support, false},
		{OpReadTicket, viewer, true},
		{OpCreateTicket, client, true},
		{OpCreateTicket, support, false},
		{OpUpdateTicket, support, true},
		{OpUpdateTicket, client, false},
		{OpDeleteTicket, admin, true},
		{OpDeleteTicket, support, false},
		{OpDeleteTicket, client, false},
		{OpReadResponses, viewer, true},
		{OpCreateResponse, client, true},
		{OpCreateResponse, viewer, false},
		{OpDeleteResponse, admin, true},
		{OpDeleteResponse, support, false},
		{OpManageRoles, admin, true},
		{OpManageRoles, support, false},
		{OpManageUsers, admin, true},
		{OpManageUsers, client, false},
	}

	for _, tc := range cases {
		err := Authorize(tc.p, tc.op)
		if tc.allowed && err != nil {
			t.Errorf("%s by %v: expected allow, got %v", tc.op, tc.p.Roles, err)
		}
		if !tc.allowed && !errors.Is(err, ErrForbidden) {
			t.Errorf("%s by %v: expected ErrForbidden, got %v", tc.op, tc.p.Roles, err)
		}
	}
}

func TestAuthorize_RoleNamesAreCaseSensitive(t *testing.T) {
	if err := Authorize(principal("u1", "Admin"), OpDeleteTicket); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for \"Admin\", got %v", err)
	}
}

func TestAuthorize_Unauthenticated(t *testing.T) {
	if err := Authorize(Principal{}, OpReadTicket); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthorize_UnknownOperationDenied(t *testing.T) {
	if err := Authorize(principal("u1", RoleAdmin), Operation("tickets.archive")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorizeOwner_ReadTicket(t *testing.T) {
	owner := principal("alice", RoleClient)
	other := principal("bob", RoleClient)

	if err := AuthorizeOwner(owner, OpReadTicket, "alice"); err != nil {
		t.Fatalf("owner must read own ticket: %v", err)
	}
	if err := AuthorizeOwner(other, OpReadTicket, "alice"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner client must be forbidden, got %v", err)
	}
	if err := AuthorizeOwner(principal("root", RoleAdmin), OpReadTicket, "alice"); err != nil {
		t.Fatalf("admin must read any ticket: %v", err)
	}
	if err := AuthorizeOwner(principal("agent", RoleSupport), OpReadResponses, "alice"); err != nil {
		t.Fatalf("support must read any responses: %v", err)
	}
}

func TestAuthorizeOwner_CreateResponse(t *testing.T) {
	cases := []struct {
		name    string
		p       Principal
		owner   string
		allowed bool
	}{
		{"client on own ticket", principal("alice", RoleClient), "alice", true},
		{"client on foreign ticket", principal("bob", RoleClient), "alice", false},
		{"client with display role on foreign ticket", principal("bob", RoleClient, "vip"), "alice", false},
		{"client+support on foreign ticket", principal("carol", RoleClient, RoleSupport), "alice", true},
		{"admin on foreign ticket", principal("root", RoleAdmin), "alice", true},
		{"support on foreign ticket", principal("agent", RoleSupport), "alice", true},
	}

	for _, tc := range cases {
		err := AuthorizeOwner(tc.p, OpCreateResponse, tc.owner)
		if tc.allowed && err != nil {
			t.Errorf("%s: expected allow, got %v", tc.name, err)
		}
		if !tc.allowed && !errors.Is(err, ErrForbidden) {
			t.Errorf("%s: expected ErrForbidden, got %v", tc.name, err)
		}
	}
}

func TestAuthorizeOwner_NoOwnershipRule(t *testing.T) {
	if err := AuthorizeOwner(principal("agent", RoleSupport), OpUpdateTicket, "alice"); err != nil {
		t.Fatalf("update has no ownership restriction, got %v", err)
	}
}
