package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin       = "LOGIN"
	AuditActionLoginDenied = "LOGIN_DENIED"
	AuditActionLogout      = "LOGOUT"
	AuditActionSignup      = "SIGNUP"
	AuditActionExamCreate  = "EXAM_CREATE"
	AuditActionExamDelete  = "EXAM_DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         int64     `db:"id" json:"id"`
	AccountID  *string   `db:"account_id" json:"account_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Detail     []byte    `db:"detail" json:"detail,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
