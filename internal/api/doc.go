// Package api contains the HTTP handlers for folders, decks, cards, study
// sessions and the language catalog. Handlers decode and validate requests,
// call the services with the owner taken from the bearer token, and map
// service errors to status codes through HandleAPIError.
package api
