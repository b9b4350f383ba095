package domain

// TradeStatus is the lifecycle state of a trade.
type TradeStatus string

const (
	TradeStatusPending  TradeStatus = "PENDING"
	TradeStatusAccepted TradeStatus = "ACCEPTED"
	TradeStatusRejected TradeStatus = "REJECTED"
)

// IsTerminal reports whether the status is one of the two terminal values.
func (s TradeStatus) IsTerminal() bool {
	return s == TradeStatusAccepted || s == TradeStatusRejected
}

// Valid reports whether s is one of the three known statuses.
func (s TradeStatus) Valid() bool {
	return s == TradeStatusPending || s.IsTerminal()
}

// Trade is a proposed bilateral exchange of one game each between two
// accounts. A trade is immutable except for Status, which transitions at most
// once from PENDING to exactly one terminal value.
type Trade struct {
	ID            string      `json:"id"`
	Sender        string      `json:"sender"`
	Receiver      string      `json:"receiver"`
	OfferedGame   string      `json:"offered_game"`
	RequestedGame string      `json:"requested_game"`
	Status        TradeStatus `json:"status"`
}

// TradesForUser partitions a user's trades by direction.
type TradesForUser struct {
	Incoming []Trade `json:"incoming"`
	Outgoing []Trade `json:"outgoing"`
}
