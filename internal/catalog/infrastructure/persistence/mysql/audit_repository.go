package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"gorm.io/gorm"
)

// AuthAuditRecord 管理员鉴权失败记录
type AuthAuditRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	RequestID  string    `gorm:"column:request_id;type:varchar(64);index"`
	ClientIP   string    `gorm:"column:client_ip;type:varchar(64)"`
	Path       string    `gorm:"column:path;type:varchar(255)"`
	Reason     string    `gorm:"column:reason;type:varchar(64);index"`
	OccurredAt time.Time `gorm:"column:occurred_at;index;not null"`
}

// TableName 审计表名
func (AuthAuditRecord) TableName() string { return "admin_auth_audits" }

type auditRepository struct{ db *gorm.DB }

// NewAuditRepository 创建基于 GORM 的鉴权审计仓储
func NewAuditRepository(db *gorm.DB) domain.AuditRecorder {
	return &auditRepository{db: db}
}

// RecordAuthFailure 写入一条鉴权失败记录
func (r *auditRepository) RecordAuthFailure(ctx context.Context, e domain.AuthAuditEntry) error {
	rec := &AuthAuditRecord{
		RequestID:  e.RequestID,
		ClientIP:   e.ClientIP,
		Path:       e.Path,
		Reason:     e.Reason,
		OccurredAt: e.OccurredAt,
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert auth audit: %w", err)
	}
	return nil
}
