package trade

// Validation reasons carried on ErrValidation
const (
	ReasonSelfTrade          = "sender and receiver are the same account"
	ReasonSameGameName       = "offered and requested games have the same name"
	ReasonReceiverNotFound   = "receiver does not exist"
	ReasonOfferedNotOwned    = "sender does not own the offered game"
	ReasonRequestedNotOwned  = "receiver does not own the requested game"
	ReasonInvalidTarget      = "target status must be ACCEPTED or REJECTED"
)

// Log Messages
const (
	LogMsgTradeCreated       = "Trade created"
	LogMsgTradeResolved      = "Trade resolved"
	LogMsgTransitionLost     = "Trade transition lost the status write"
	LogMsgSwapOrphaned       = "SWAP APPLIED BUT STATUS WRITE LOST to an external writer - operator intervention required"
	LogMsgNotifyFailed       = "Failed to publish trade notification, continuing"
)
