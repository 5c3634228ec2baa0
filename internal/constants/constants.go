package constants

const (
	// Network constants
	DefaultTimeout          = 30
	DefaultRetryCount       = 3
	DefaultRetryWaitTime    = 5
	DefaultRetryMaxWaitTime = 20

	// Conversation cache constants
	CacheExpiration      = 30 // minutes
	CacheCleanupInterval = 10 // minutes
)
