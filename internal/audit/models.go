package audit

import "time"

// EventCategory classifies audit events by their primary purpose so sinks can
// route or retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers account and tenant lifecycle records.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers failed authentication and access violations.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity that may be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    AuditEvent    `json:"action"`
	UserID    string        `json:"userId,omitempty"`
	TenantID  string        `json:"tenantId,omitempty"`
	Email     string        `json:"email,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
	ClientIP  string        `json:"clientIp,omitempty"`
}

type AuditEvent string

const (
	// Credential events
	EventUserCreated    AuditEvent = "user_created"
	EventSessionCreated AuditEvent = "session_created"
	EventSessionRevoked AuditEvent = "session_revoked"
	EventAuthFailed     AuditEvent = "auth_failed"

	// Tenancy events
	EventTenantCreated     AuditEvent = "tenant_created"
	EventTenantUserCreated AuditEvent = "tenant_user_created"
	EventAccessDenied      AuditEvent = "tenant_access_denied"

	// Registration events
	EventRegistrationCompleted  AuditEvent = "registration_completed"
	EventRegistrationIncomplete AuditEvent = "registration_incomplete"

	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:            CategoryCompliance,
	EventTenantCreated:          CategoryCompliance,
	EventTenantUserCreated:      CategoryCompliance,
	EventRegistrationCompleted:  CategoryCompliance,
	EventRegistrationIncomplete: CategoryCompliance,

	EventAuthFailed:        CategorySecurity,
	EventAccessDenied:      CategorySecurity,
	EventSessionRevoked:    CategorySecurity,
	EventRateLimitExceeded: CategorySecurity,

	EventSessionCreated: CategoryOperations,
}

// Category returns the category for the event, operations when unmapped.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}
