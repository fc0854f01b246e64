package models

import (
	"strings"
	"time"
)

// EndpointClass groups routes sharing one per-IP budget.
type EndpointClass string

const (
	ClassAuth         EndpointClass = "auth"
	ClassRegistration EndpointClass = "registration"
)

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, set when not allowed
	// Degraded is true when the check ran against the local fallback.
	Degraded bool
}

// NewIPKey builds the window key for a client IP within a class.
func NewIPKey(class EndpointClass, ip string) string {
	return "ratelimit:" + string(class) + ":" + SanitizeKeySegment(ip)
}

// SanitizeKeySegment escapes the key delimiter so an identifier cannot spill
// into adjacent key segments.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
