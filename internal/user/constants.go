package user

// Log Messages
const (
	LogMsgUserRegistered        = "User registered"
	LogMsgUserAuthenticated     = "User authenticated"
	LogMsgAuthenticationFailed  = "Authentication failed"
	LogMsgProfileUpdated        = "Profile updated"
	LogMsgPasswordUpdated       = "Password updated"
	LogMsgGameAdded             = "Game added to inventory"
	LogMsgGameUpdated           = "Game updated"
	LogMsgGameRemoved           = "Game removed from inventory"
	LogMsgCredentialNotifFailed = "Failed to publish credential change notification, continuing"
)
