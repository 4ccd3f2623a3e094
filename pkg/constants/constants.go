package constants

type ContextKey string

const (
	TxKey        ContextKey = "tx"
	PoolKey      ContextKey = "pool"
	LoggerKey    ContextKey = "logger"
	UserIDKey    ContextKey = "userID"
	RequestIDKey ContextKey = "requestID"
)
