package notify

import "encoding/json"

// Type discriminates notification events. The set is closed: the consumer
// dispatches over it exhaustively, so adding a type is a compile-time change.
type Type string

const (
	CredentialChanged Type = "credential.changed"
	OfferCreated      Type = "trade.offer.created"
	OfferAccepted     Type = "trade.offer.accepted"
	OfferRejected     Type = "trade.offer.rejected"
)

// Known reports whether t belongs to the closed event-type set.
func (t Type) Known() bool {
	switch t {
	case CredentialChanged, OfferCreated, OfferAccepted, OfferRejected:
		return true
	}
	return false
}

// Event is the envelope written to the notification stream.
type Event struct {
	Version string          `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type            `json:"type"`
	Key     string          `json:"key"` // partition key: trade ID, or account identity for credential events
	Payload json.RawMessage `json:"payload"`
}

// Party identifies one side of a trade in an event payload. The secret is
// carried because outbound mail is sent from the party's own account.
type Party struct {
	Name     string `json:"name"`
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// CredentialChangedPayloadV1 is the typed payload for credential change events
type CredentialChangedPayloadV1 struct {
	AccountName     string `json:"account_name"`
	AccountIdentity string `json:"account_identity"`
	PriorSecret     string `json:"prior_secret"`
}

// OfferPayloadV1 is the typed payload for trade offer lifecycle events
// (created, accepted, rejected)
type OfferPayloadV1 struct {
	TradeID       string `json:"trade_id"`
	Sender        Party  `json:"sender"`
	Receiver      Party  `json:"receiver"`
	OfferedItem   string `json:"offered_item"`
	RequestedItem string `json:"requested_item"`
}

// NewEvent builds an envelope around a typed payload.
func NewEvent(eventType Type, key string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Key:     key,
		Payload: data,
	}, nil
}

// DecodePayload decodes an event payload into T.
func DecodePayload[T any](event Event) (T, error) {
	var result T
	err := json.Unmarshal(event.Payload, &result)
	return result, err
}
