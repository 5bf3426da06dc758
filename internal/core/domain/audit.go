package domain

import "time"

// AuditAction names a mutation performed through the admin pages.
type AuditAction string

const (
	AuditUserCreated AuditAction = "user.created"
	AuditUserUpdated AuditAction = "user.updated"
	AuditUserDeleted AuditAction = "user.deleted"
)

// AuditEvent records who changed which account and when.
type AuditEvent struct {
	Action   AuditAction `json:"action"`
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Actor    string      `json:"actor"` // empty when the change did not come from a request
	At       time.Time   `json:"at"`
}
