package common

// AuthorizationHeader carries the seller's access token on HTTP requests,
// as "Bearer <token>".
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)
