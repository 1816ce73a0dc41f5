package resolver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veyra-network/vey-core/pkg/audit"
	"github.com/veyra-network/vey-core/pkg/collaborator"
	"github.com/veyra-network/vey-core/pkg/revocation"
	"github.com/veyra-network/vey-core/pkg/vc"
	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// ResolveRequest is the input to Resolve (spec §4.G).
type ResolveRequest struct {
	PID         string    `json:"pid"`
	RequesterID string    `json:"requesterId"`
	AccessToken string    `json:"accessToken"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// ResolveResult is the outcome of Resolve. On denial or error Address is
// always nil; AccessLogID is always populated since an audit entry is
// written on every branch (spec §4.G).
type ResolveResult struct {
	Success     bool              `json:"success"`
	Address     map[string]string `json:"address,omitempty"`
	NewPID      string            `json:"newPid,omitempty"`
	Error       string            `json:"error,omitempty"`
	AccessLogID string            `json:"accessLogId"`
}

// Resolve runs the policy → revocation → VC-store pipeline and writes
// exactly one audit entry regardless of outcome (spec §4.G, §9 "resolver
// audit totality"). issuerDID names the revocation list to consult.
func Resolve(req ResolveRequest, policies []Policy, issuerDID string, revStore collaborator.RevocationStorage, vcStore collaborator.VCStore, auditSink collaborator.AuditSink, clock collaborator.Clock) (ResolveResult, error) {
	now := clock.Now()

	write := func(result audit.Result, metadata map[string]string) (ResolveResult, error) {
		entry := audit.Entry{
			ID:          uuid.NewString(),
			PID:         req.PID,
			AccessorDID: req.RequesterID,
			Action:      "resolve",
			Result:      result,
			Timestamp:   now,
			Metadata:    metadata,
		}
		if err := auditSink.Write(entry); err != nil {
			// Per spec §9: an audit-sink failure must not leak the
			// address and is surfaced as the fatal-tier error kind.
			return ResolveResult{}, fmt.Errorf("%w: audit sink write failed: %v", vyerr.ErrInternalCryptoFailure, err)
		}
		return ResolveResult{AccessLogID: entry.ID}, nil
	}

	// (1) Policy match.
	_, err := FindPermitting(policies, req.RequesterID, req.PID, ActionResolve, now)
	if err != nil {
		res, werr := write(audit.ResultDenied, map[string]string{"errorKind": "access_denied"})
		if werr != nil {
			return ResolveResult{}, werr
		}
		res.Success = false
		res.Error = "Access denied"
		return res, nil
	}

	// (2) Revocation.
	list, err := revStore.LatestList(issuerDID)
	if err == nil && revocation.IsRevoked(req.PID, list) {
		newPID, hasNew := revocation.NewPID(req.PID, list)
		if !hasNew {
			res, werr := write(audit.ResultDenied, map[string]string{"errorKind": "revoked_no_migration"})
			if werr != nil {
				return ResolveResult{}, werr
			}
			res.Success = false
			res.Error = vyerr.ErrNoMigration.Error()
			return res, nil
		}
		// A read-of-successor is permitted only under an explicit
		// "read" policy grant for the successor PID (spec §9 Open
		// Question (a): no automatic substitution).
		if _, err := FindPermitting(policies, req.RequesterID, newPID, ActionRead, now); err != nil {
			res, werr := write(audit.ResultDenied, map[string]string{"errorKind": "revoked_no_read_grant"})
			if werr != nil {
				return ResolveResult{}, werr
			}
			res.Success = false
			res.Error = "Access denied"
			return res, nil
		}
		res, werr := write(audit.ResultSuccess, map[string]string{"newPid": newPID})
		if werr != nil {
			return ResolveResult{}, werr
		}
		res.Success = true
		res.NewPID = newPID
		return res, nil
	}

	// (3) Resolve clear address from the VC store.
	cred, err := vcStore.Get(req.PID, vc.TypeAddressPID)
	if err != nil || cred == nil {
		res, werr := write(audit.ResultError, map[string]string{"errorKind": "not_found"})
		if werr != nil {
			return ResolveResult{}, werr
		}
		res.Success = false
		res.Error = "not found"
		return res, nil
	}

	var subj vc.AddressPIDSubject
	if err := json.Unmarshal(cred.CredentialSubject, &subj); err != nil {
		res, werr := write(audit.ResultError, map[string]string{"errorKind": "malformed_credential"})
		if werr != nil {
			return ResolveResult{}, werr
		}
		res.Success = false
		res.Error = err.Error()
		return res, nil
	}

	res, werr := write(audit.ResultSuccess, nil)
	if werr != nil {
		return ResolveResult{}, werr
	}
	res.Success = true
	res.Address = map[string]string{"country": subj.Country, "pid": subj.PID}
	return res, nil
}
