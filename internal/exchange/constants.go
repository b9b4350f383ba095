package exchange

// Error Messages - Exchange Coordination
const (
	ErrMsgGameNoLongerPresent   = "game no longer present at swap time"
	ErrMsgGameNameTaken         = "game name already taken in destination inventory"
	ErrMsgFailedToReinsert      = "failed to reinsert game after aborted swap"
	ErrMsgFailedToInsertSwapped = "failed to insert game into destination inventory"
)

// Log Messages
const (
	LogMsgSwapStarted      = "Swap started"
	LogMsgSwapItemsRemoved = "Swap removed both games, inserting into destination inventories"
	LogMsgSwapCompleted    = "Swap completed"
	LogMsgSwapAborted      = "Swap aborted before any mutation"
	LogMsgSwapInsertRetry  = "Swap insert failed, retrying"
	LogMsgSwapInconsistent = "SWAP LEFT INVENTORIES INCONSISTENT - operator intervention required"
)
