// Package audit 提供不依赖数据库的审计记录器
package audit

import (
	"context"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

type logRecorder struct{}

// NewLogRecorder 把鉴权失败写入结构化日志
func NewLogRecorder() domain.AuditRecorder { return logRecorder{} }

func (logRecorder) RecordAuthFailure(ctx context.Context, e domain.AuthAuditEntry) error {
	logger.Warn(ctx, "admin auth failure",
		"audit", true,
		"client_ip", e.ClientIP,
		"path", e.Path,
		"reason", e.Reason,
		"occurred_at", e.OccurredAt,
	)
	return nil
}
