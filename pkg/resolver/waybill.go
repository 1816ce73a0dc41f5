package resolver

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veyra-network/vey-core/pkg/audit"
	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// ZKPWaybill is the carrier-visible shipping record produced by
// CreateWaybill. AddrPID is the proof's commitment, never a clear
// address (spec §4.G Waybill). Waybills are immutable once created.
type ZKPWaybill struct {
	WaybillID      string           `json:"waybillId"`
	AddrPID        string           `json:"addrPid"`
	TrackingNumber string           `json:"trackingNumber"`
	ZKProof        CompositeProof   `json:"zkProof"`
	Metadata       ShipmentMetadata `json:"metadata,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// addrPIDCommitment derives the waybill's addressee commitment from the
// composite proof's structure leg, which already publishes a content
// commitment (spec §4.G: "addr_pid is the commitment from the proof").
func addrPIDCommitment(composite CompositeProof) string {
	var pub struct {
		RulesHash string `json:"rulesHash"`
	}
	_ = composite.Structure.DecodePublicInputs(&pub)
	return string(composite.Structure.Pattern) + ":" + composite.Nonce + ":" + pub.RulesHash
}

// CreateWaybill builds an immutable ZKPWaybill from a successful
// ShippingResult and carrier-visible metadata. result.Valid must be
// true; callers must not call CreateWaybill on a denied result.
func CreateWaybill(result ShippingResult, trackingNumber string, meta ShipmentMetadata, now time.Time) (ZKPWaybill, error) {
	if !result.Valid {
		return ZKPWaybill{}, fmt.Errorf("%w: cannot create a waybill from a denied shipping result", vyerr.ErrProofRejected)
	}
	if trackingNumber == "" {
		return ZKPWaybill{}, fmt.Errorf("%w: tracking number is required", vyerr.ErrInvalidFormat)
	}
	return ZKPWaybill{
		WaybillID:      uuid.NewString(),
		AddrPID:        addrPIDCommitment(result.ZKProof),
		TrackingNumber: trackingNumber,
		ZKProof:        result.ZKProof,
		Metadata:       meta,
		CreatedAt:      now,
	}, nil
}

// TrackingLedger is an append-only store of tracking events keyed by
// waybill id, grounded on the teacher's pkg/ledger/store.go append-only
// ledger pattern: events are appended once and never mutated or
// removed, and the ledger guards its map with its own mutex (the same
// exception SPEC_FULL.md §5 grants the in-memory collaborator stores).
type TrackingLedger struct {
	mu     sync.RWMutex
	events map[string][]audit.TrackingEvent
}

// NewTrackingLedger returns an empty TrackingLedger.
func NewTrackingLedger() *TrackingLedger {
	return &TrackingLedger{events: make(map[string][]audit.TrackingEvent)}
}

// CreateTrackingEvent appends an event to waybillID's history (spec
// §4.G: "tracking events are appended via create_tracking_event").
func (l *TrackingLedger) CreateTrackingEvent(waybillID, status, location string, at time.Time) audit.TrackingEvent {
	event := audit.TrackingEvent{WaybillID: waybillID, Status: status, Location: location, Timestamp: at}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[waybillID] = append(l.events[waybillID], event)
	return event
}

// History returns a copy of waybillID's tracking events in append order.
func (l *TrackingLedger) History(waybillID string) []audit.TrackingEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	events := l.events[waybillID]
	out := make([]audit.TrackingEvent, len(events))
	copy(out, events)
	return out
}
