package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventLoginFailed            EventType = "login_failed"
	EventLoginBlocked           EventType = "login_blocked"
	EventLoginSuccess           EventType = "login_success"
	EventBlockCreated           EventType = "block_created"
	EventRateLimitTriggered     EventType = "rate_limit_triggered"
	EventUnauthorizedAccess     EventType = "unauthorized_access"
	EventForbiddenAccess        EventType = "forbidden_access"
	EventUserRegistered         EventType = "user_registered"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordResetCompleted EventType = "password_reset_completed"
	EventPasswordResetFailed    EventType = "password_reset_failed"
	EventUploadRejected         EventType = "upload_rejected"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Event        EventType
	SubjectType  string // "email", "ip", "user_id"
	SubjectValue string
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]any
	Timestamp    time.Time
	Severity     Severity
	Level        string
	Service      string
	Environment  string
}

// PersistFunc stores a security event outside the log stream.
type PersistFunc func(ctx context.Context, event SecurityEvent) error

// SecurityLogger writes authentication and upload events to a dedicated zap logger.
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string

	persist PersistFunc
}

// NewSecurityLogger builds the production zap configuration on stdout.
func NewSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewSecurityLoggerWith(logger, serviceName, environment)
}

// NewSecurityLoggerWith wraps an existing zap logger.
func NewSecurityLoggerWith(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// NopSecurityLogger discards every event.
func NopSecurityLogger() *SecurityLogger {
	return NewSecurityLoggerWith(zap.NewNop(), "", "")
}

func levelFor(event EventType) zapcore.Level {
	switch event {
	case EventLoginSuccess, EventUserRegistered, EventPasswordResetRequested, EventPasswordResetCompleted:
		return zapcore.InfoLevel
	case EventLoginBlocked, EventBlockCreated:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// SetPersistFunc registers a sink that receives every event after it is logged.
// Subject values are already masked when the sink sees them.
func (sl *SecurityLogger) SetPersistFunc(f PersistFunc) {
	sl.persist = f
}

// Log logs a security event
func (sl *SecurityLogger) Log(_ context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	level := levelFor(event.Event)
	event.Level = level.String()
	event.Severity = GetSeverity(event.Event)
	event.Service = sl.serviceName
	event.Environment = sl.environment
	if event.SubjectValue != "" {
		event.SubjectValue = maskValue(event.SubjectType, event.SubjectValue)
	}

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(event.Severity)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)

	if sl.persist != nil {
		// the request context may already be cancelled
		go func(e SecurityEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sl.persist(ctx, e); err != nil {
				sl.zapLogger.Error("failed to persist security event", zap.Error(err))
			}
		}(event)
	}
}

func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, email, ip, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: email,
		IP:           ip,
		Details:      map[string]any{"reason": reason},
	})
}

func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, userID, ip string) {
	sl.Log(ctx, SecurityEvent{Event: EventLoginSuccess, SubjectType: "user_id", SubjectValue: userID, IP: ip})
}

func (sl *SecurityLogger) LogLoginBlocked(ctx context.Context, email, ip string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginBlocked,
		SubjectType:  "email",
		SubjectValue: email,
		IP:           ip,
		Details:      map[string]any{"reason": "too_many_failed_attempts"},
	})
}

func (sl *SecurityLogger) LogBlockCreated(ctx context.Context, email, ip string, durationMinutes int) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventBlockCreated,
		SubjectType:  "email",
		SubjectValue: email,
		IP:           ip,
		Details:      map[string]any{"duration_minutes": durationMinutes},
	})
}

func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]any{"endpoint": endpoint},
	})
}

func (sl *SecurityLogger) LogUnauthorized(ctx context.Context, ip, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventUnauthorizedAccess,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]any{"reason": reason},
	})
}

func (sl *SecurityLogger) LogForbidden(ctx context.Context, actorID, targetID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventForbiddenAccess,
		SubjectType:  "user_id",
		SubjectValue: actorID,
		Details:      map[string]any{"target": HashValue(targetID)},
	})
}

func (sl *SecurityLogger) LogPasswordReset(ctx context.Context, event EventType, email string) {
	sl.Log(ctx, SecurityEvent{Event: event, SubjectType: "email", SubjectValue: email})
}

func (sl *SecurityLogger) LogUploadRejected(ctx context.Context, userID, ip, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventUploadRejected,
		SubjectType:  "user_id",
		SubjectValue: userID,
		IP:           ip,
		Details:      map[string]any{"reason": reason},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 3 || at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue returns the first 16 hex chars of the value's SHA256.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip", "user_id":
		return value
	default:
		return HashValue(value)
	}
}
