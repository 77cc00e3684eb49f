/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients, over HTTP
responses and WebSocket error events alike.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Presence, Room and Message Errors
const (
	// ErrInvalidIdentity indicates an empty or malformed participant identity.
	ErrInvalidIdentity = 2001

	// ErrNotInRoom indicates that a message was sent before any room was joined.
	ErrNotInRoom = 2002

	// ErrUnknownConnection indicates an event for a connection that is no longer registered.
	ErrUnknownConnection = 2003

	// ErrMessageContentInvalid indicates empty or oversized message content.
	ErrMessageContentInvalid = 2004

	// ErrUnsupportedEvent indicates an inbound event with an unknown type or malformed payload.
	ErrUnsupportedEvent = 2005
)

// 3xxx: Account and Session Errors
const (
	// ErrInvalidUsername indicates a username that does not satisfy the identity rules.
	ErrInvalidUsername = 3001

	// ErrInvalidPassword indicates a password outside the accepted length.
	ErrInvalidPassword = 3002

	// ErrUserAlreadyExists indicates a registration for a username that is taken.
	ErrUserAlreadyExists = 3003

	// ErrInvalidCredentials indicates a failed credential check.
	ErrInvalidCredentials = 3004

	// ErrUnauthorized indicates a missing or invalid token where one is required.
	ErrUnauthorized = 3005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrPersistenceFailure indicates that the message store rejected or timed out an operation.
	ErrPersistenceFailure = 5001

	// ErrShuttingDown indicates that the server no longer accepts connections.
	ErrShuttingDown = 5002
)
