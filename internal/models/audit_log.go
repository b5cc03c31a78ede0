package models

import (
	"time"
)

// AuditAction tags what kind of action an audit entry records. The set is
// open: new tags may be introduced without schema changes.
type AuditAction string

const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionUpdate       AuditAction = "UPDATE"
	AuditActionDelete       AuditAction = "DELETE"
	AuditActionLoginSuccess AuditAction = "LOGIN_SUCCESS"
	AuditActionLoginFailure AuditAction = "LOGIN_FAILURE"
	AuditActionFailed       AuditAction = "FAILED"
)

// Audited entity types.
const (
	EntityActivity = "activity"
	EntityTask     = "task"
	EntityProspect = "prospect"
	EntityUser     = "user"
)

// FieldChange is one before/after pair inside an audit entry's details.
type FieldChange struct {
	OldValue interface{} `bson:"oldValue" json:"oldValue"`
	NewValue interface{} `bson:"newValue" json:"newValue"`
}

// AuditLogEntry is one immutable record of one action taken against one
// entity. Actor identity is captured by value so the entry stays meaningful
// after the actor account is changed or removed; entity references are by id
// only and must survive deletion of the entity.
type AuditLogEntry struct {
	ID           string                 `bson:"_id,omitempty" json:"id"`
	Timestamp    time.Time              `bson:"timestamp" json:"timestamp"`
	Action       AuditAction            `bson:"action" json:"action"`
	EntityType   string                 `bson:"entity_type,omitempty" json:"entityType,omitempty"`
	EntityID     string                 `bson:"entity_id,omitempty" json:"entityId,omitempty"`
	UserID       string                 `bson:"user_id,omitempty" json:"userId,omitempty"`
	UserName     string                 `bson:"user_name,omitempty" json:"userName,omitempty"`
	UserRole     string                 `bson:"user_role,omitempty" json:"userRole,omitempty"`
	TargetUserID string                 `bson:"target_user_id,omitempty" json:"targetUserId,omitempty"`
	Details      map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	IPAddress    string                 `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	UserAgent    string                 `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
}
