/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Presence, Room and Message Errors
	ErrInvalidIdentity:       {Code: ErrInvalidIdentity, Message: "Invalid identity."},
	ErrNotInRoom:             {Code: ErrNotInRoom, Message: "Join a conversation before sending messages."},
	ErrUnknownConnection:     {Code: ErrUnknownConnection, Message: "Connection is closed."},
	ErrMessageContentInvalid: {Code: ErrMessageContentInvalid, Message: "Message must be between 1 and %d bytes."},
	ErrUnsupportedEvent:      {Code: ErrUnsupportedEvent, Message: "Unsupported event."},

	// 3xxx: Account and Session Errors
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Invalid username.", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Invalid password.", Status: http.StatusBadRequest},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Username already registered.", Status: http.StatusConflict},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid credentials.", Status: http.StatusUnauthorized},
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrPersistenceFailure: {Code: ErrPersistenceFailure, Message: "Could not save your change. Please try again.", Status: http.StatusInternalServerError},
	ErrShuttingDown:       {Code: ErrShuttingDown, Message: "Server is restarting. Please reconnect shortly.", Status: http.StatusServiceUnavailable},
}
