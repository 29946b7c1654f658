package domain

import "fmt"

// AuthError is returned when the token endpoint rejects a refresh.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("credential refresh rejected: status %d: %s", e.Status, e.Body)
}

// APIError is returned when the history, catalog or publish endpoint answers
// with a non-success status.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s endpoint returned status %d: %s", e.Endpoint, e.Status, e.Body)
}

// EmptyQueueError means every candidate has already been published and the
// catalog needs new items.
type EmptyQueueError struct {
	Candidates int
}

func (e *EmptyQueueError) Error() string {
	return fmt.Sprintf("no eligible candidate among %d, add new items to the catalog", e.Candidates)
}
