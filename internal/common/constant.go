package common

// Header names used when talking to the remote content database.
const (
	APIKeyHeaderName        = "apikey"
	AuthorizationHeaderName = "Authorization"
)

// UserAgent is sent with every outbound request.
const UserAgent = "brightstudy-sync"
