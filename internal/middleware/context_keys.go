package middleware

// ContextKey - пользовательский тип для ключей контекста, чтобы избежать коллизий.
type ContextKey string

const (
	// ModeratorIDCtxKey - ключ, под которым авторизованный moderator id хранится в контексте.
	ModeratorIDCtxKey = ContextKey("moderator_id")

	// RequestIDCtxKey - ключ для идентификатора запроса, проставляемого логирующим middleware.
	RequestIDCtxKey = ContextKey("request_id")
)
