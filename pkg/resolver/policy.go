// Copyright 2025 Veyra Protocol
//
// Package resolver implements shipping validation, waybill lifecycle,
// and policy-gated PID resolution (spec §4.G): the component that turns
// a shipping request into a proof+token or a denial, and a resolve
// request into clear address data or an audited refusal.
package resolver

import (
	"fmt"
	"strings"
	"time"

	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// Action is a policy-permitted operation against a PID.
type Action string

const (
	ActionResolve Action = "resolve"
	ActionRead    Action = "read"
	ActionAudit   Action = "audit"
)

// Policy is an access-control grant (spec §6 Policy): principal is a DID
// or the wildcard "*"; resource is a PID pattern with "*" permitted only
// as the tail (prefix match); ExpiresAt is optional.
type Policy struct {
	ID         string     `json:"id"`
	Principal  string     `json:"principal"`
	Resource   string     `json:"resource"`
	Action     Action     `json:"action"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// matchesPrincipal reports whether requesterDID satisfies p's principal,
// which is either an exact DID or the wildcard "*".
func (p Policy) matchesPrincipal(requesterDID string) bool {
	return p.Principal == "*" || p.Principal == requesterDID
}

// matchesResource reports whether pid satisfies p's resource pattern. A
// trailing "*" makes the pattern a prefix match; anything else requires
// an exact match (spec §6: "resources use * only at the tail").
func (p Policy) matchesResource(pid string) bool {
	if strings.HasSuffix(p.Resource, "*") {
		return strings.HasPrefix(pid, strings.TrimSuffix(p.Resource, "*"))
	}
	return p.Resource == pid
}

// Permits reports whether p grants action on pid to requesterDID at now
// (spec §4.G: "principal match, resource prefix-match, action equality,
// expiry not passed").
func (p Policy) Permits(requesterDID, pid string, action Action, now time.Time) bool {
	if p.Action != action {
		return false
	}
	if !p.matchesPrincipal(requesterDID) {
		return false
	}
	if !p.matchesResource(pid) {
		return false
	}
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return false
	}
	return true
}

// FindPermitting returns the first policy in policies that permits
// action on pid for requesterDID, or ErrAccessDenied if none do.
func FindPermitting(policies []Policy, requesterDID, pid string, action Action, now time.Time) (Policy, error) {
	for _, p := range policies {
		if p.Permits(requesterDID, pid, action, now) {
			return p, nil
		}
	}
	return Policy{}, fmt.Errorf("%w: no policy grants %s on %s to %s", vyerr.ErrAccessDenied, action, pid, requesterDID)
}
