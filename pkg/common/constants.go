package common

const (
	RedisKeyPositions = "tracker:positions"
	RedisKeyTrades    = "tracker:trades"

	// RedisKeyLastPrice is a hash holding the latest quote for a ticker.
	RedisKeyLastPrice = "last_price:%s"

	StorageSchemaVersion = "1.0"

	// DefaultStorageQuotaBytes applies when storage.max_bytes is not configured.
	DefaultStorageQuotaBytes = 5 * 1024 * 1024
)
