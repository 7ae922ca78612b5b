// internal/models/status.go
package models

// ApplicationStatus is the loosely-typed status payload reported by the
// staff backend. Requirements may live at several nesting levels depending
// on the backend version, so the payload is kept as raw maps and resolved
// by the aggregator.
type ApplicationStatus struct {
	ApplicationID string         `json:"applicationId"`
	Status        string         `json:"status"`
	Payload       map[string]any `json:"payload"`
}
