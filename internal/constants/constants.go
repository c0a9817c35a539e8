package constants

const (
	//分頁
	DefaultPagingSize int = 20
	DefaultPaging     int = 1
	MaxPagingSize     int = 100
)

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey  ContextKey = "authorization"
	AuthorizationTypeBearer ContextKey = "bearer"
	AuthorizationPayloadKey ContextKey = "authorization_payload"
	IdempotencyKeyHeader    string     = "Idempotency-Key"
)

type RequestID string

const (
	RequestIDKey RequestID = "request_id"
)
