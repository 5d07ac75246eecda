package constants

type contextKey string

const (
	HeaderXRequestId      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"
	HeaderAuthorization   = "Authorization"

	ContextKeyIdempotencyKey contextKey = "idempotency_key"
	ContextKeySession        contextKey = "session"

	ServiceName = "storefront"

	CacheOpCheckout = "checkout"
	CacheOpRevoked  = "revoked"
)
