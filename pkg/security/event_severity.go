package security

// Severity ranks a security event for triage. It is derived from the event
// type and never taken from request input.
type Severity string

const (
	SeverityINFO     Severity = "INFO"
	SeverityMEDIUM   Severity = "MEDIUM"
	SeverityWARN     Severity = "WARN"
	SeverityHIGH     Severity = "HIGH"
	SeverityCRITICAL Severity = "CRITICAL"
)

var eventSeverity = map[EventType]Severity{
	EventLoginSuccess:           SeverityINFO,
	EventUserRegistered:         SeverityINFO,
	EventPasswordResetRequested: SeverityINFO,

	EventPasswordResetCompleted: SeverityMEDIUM,
	EventForbiddenAccess:        SeverityMEDIUM,

	EventLoginFailed:         SeverityWARN,
	EventRateLimitTriggered:  SeverityWARN,
	EventPasswordResetFailed: SeverityWARN,
	EventUploadRejected:      SeverityWARN,
	EventUnauthorizedAccess:  SeverityWARN,

	EventLoginBlocked: SeverityHIGH,
	EventBlockCreated: SeverityHIGH,
}

// GetSeverity returns the severity for an event type, MEDIUM when unmapped.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := eventSeverity[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

// IsHighOrAbove returns true if the event is HIGH or CRITICAL severity
func IsHighOrAbove(eventType EventType) bool {
	severity := GetSeverity(eventType)
	return severity == SeverityHIGH || severity == SeverityCRITICAL
}
