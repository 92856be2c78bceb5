package domain

import (
	"context"
	"time"
)

// AuthAuditEntry 管理员鉴权失败审计记录，不包含任何凭证内容
type AuthAuditEntry struct {
	RequestID  string
	ClientIP   string
	Path       string
	Reason     string
	OccurredAt time.Time
}

// AuditRecorder 审计记录器
type AuditRecorder interface {
	RecordAuthFailure(ctx context.Context, entry AuthAuditEntry) error
}
