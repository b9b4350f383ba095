package notify

// Event schema versioning
const (
	// EventSchemaVersion is the current event schema version
	EventSchemaVersion = "1.0"
)

// Error Messages - Notification Pipeline
const (
	ErrMsgFailedToEncodeEvent  = "failed to encode event"
	ErrMsgFailedToWriteMessage = "failed to write message"
	ErrMsgFailedToDecodeEvent  = "failed to decode event"
)

// Log Messages
const (
	LogMsgEventPublished       = "Notification event published"
	LogMsgEventPublishFailed   = "Notification event publish failed"
	LogMsgEventHandled         = "Notification event handled"
	LogMsgEventHandlerFailed   = "Notification event handler failed, leaving uncommitted"
	LogMsgUnknownEventType     = "Unknown notification event type, leaving uncommitted"
	LogMsgDuplicateEvent       = "Duplicate notification event, committing without redelivery"
	LogMsgCommitFailed         = "Failed to commit notification offset"
	LogMsgConsumerStopped      = "Notification consumer stopped"
)
