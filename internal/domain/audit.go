package domain

import "time"

// AuditEntry records a mutation performed against a resource.
type AuditEntry struct {
	ID          string
	Action      string
	Resource    string
	ResourceID  string
	PerformedBy string
	Meta        map[string]any
	CreatedAt   time.Time
}
