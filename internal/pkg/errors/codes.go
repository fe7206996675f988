package errors

import "net/http"

var (
	ErrUnauthorized = New(
		"REQUEST_UNAUTHORISED",
		"Request is not authorised",
		http.StatusUnauthorized,
	)

	ErrInvalidQuery = New(
		"REQUEST_QUERY_INVALID",
		"Invalid query parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
