package types

import "encoding/json"

// EventKind tags the domain-event variants the trigger engine matches
// against and that subscribers observe over a live query cursor.
type EventKind string

const (
	EventDomainCreated   EventKind = "DomainCreated"
	EventDomainDeleted   EventKind = "DomainDeleted"
	EventAccountCreated  EventKind = "AccountCreated"
	EventAccountDeleted  EventKind = "AccountDeleted"
	EventAssetDefCreated EventKind = "AssetDefinitionCreated"
	EventAssetDefDeleted EventKind = "AssetDefinitionDeleted"
	EventAssetCreated    EventKind = "AssetCreated"
	EventAssetDeleted    EventKind = "AssetDeleted"
	EventAssetChanged    EventKind = "AssetChanged"
	EventMetadataSet     EventKind = "MetadataInserted"
	EventMetadataRemoved EventKind = "MetadataRemoved"
	EventPermGranted     EventKind = "PermissionGranted"
	EventPermRevoked     EventKind = "PermissionRevoked"
	EventRoleGranted     EventKind = "RoleGranted"
	EventRoleRevoked     EventKind = "RoleRevoked"
	EventTriggerFired    EventKind = "TriggerExecuted"
	EventTriggerFailed   EventKind = "TriggerFailed"
	EventTransactionCommitted EventKind = "TransactionCommitted"
	EventTransactionRejected  EventKind = "TransactionRejected"
	EventBlockCommitted  EventKind = "BlockCommitted"
)

// DataEvent is a single domain event raised while applying one instruction.
// WSV emission order  is the order in which instructions ran,
// not an arbitrary batch order.
type DataEvent struct {
	Kind EventKind
	// Subject is the stringified identifier the event concerns (a DomainId,
	// AccountId, AssetId, and so on), kept as a string so events of
	// different subject types can share one slice without a type switch at
	// every consumer.
	Subject string
	// Payload is room for kind-specific detail. The events emitted by
	// core/dispatch and multisig leave it empty; Kind and Subject are all
	// they carry.
	Payload json.RawMessage
}

// EventFilter selects the DataEvents a trigger or live query cares about.
// A nil Kinds matches every kind; an empty SubjectPrefix matches every subject.
type EventFilter struct {
	Kinds         []EventKind
	SubjectPrefix string
}

// Matches reports whether e satisfies f.
func (f EventFilter) Matches(e DataEvent) bool {
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if k == e.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.SubjectPrefix != "" {
		if len(e.Subject) < len(f.SubjectPrefix) || e.Subject[:len(f.SubjectPrefix)] != f.SubjectPrefix {
			return false
		}
	}
	return true
}
