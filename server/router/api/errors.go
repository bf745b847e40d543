package api

import "github.com/labstack/echo/v4"

// Stable client-facing error strings. Handlers map every failure to one
// of these plus an HTTP status; nothing crosses the request boundary as
// a panic or a raw driver error.
const (
	errMalformedRequest = "invalid request body"
	errInvalidMessages  = "messages must be an array"
	errEmptyMessages    = "messages cannot be empty"
	errUnauthorized     = "unauthorized"
	errSavePrompt       = "failed to save prompt"
	errMisconfigured    = "server is not configured"
	errBadAttachment    = "unsupported attachment"
)

type errorBody struct {
	Error string `json:"error"`
}

func errJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, errorBody{Error: message})
}
