package config

import "time"

// Notification channel defaults
const (
	DefaultNotificationTopic = "notifications"
	DefaultConsumerGroupID   = "notification-stream"
	DefaultPublishTimeout    = 5 * time.Second
	DefaultConsumerWorkers   = 1
	DefaultDedupeCacheSize   = 1024
)

// Exchange coordinator defaults
const (
	DefaultSwapInsertRetries = 5
	DefaultSwapRetryBackoff  = 100 * time.Millisecond
)

// Delivery defaults
const (
	DefaultSMTPPort = 587
)

// Auth defaults
const (
	DefaultJWTTTL = 24 * time.Hour
)
