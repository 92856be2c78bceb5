package application

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	Payload     map[string]any
	Credentials domain.Credentials
	ClientIP    string
	Path        string
}

// CatalogCommandService 商品目录命令服务
type CatalogCommandService struct {
	repo      domain.ProductRepository
	verifier  *domain.CredentialVerifier
	audit     domain.AuditRecorder
	publisher domain.EventPublisher
	metrics   *metrics.CatalogMetrics
	opts      Options
}

// NewCatalogCommandService 创建商品目录命令服务实例
func NewCatalogCommandService(
	repo domain.ProductRepository,
	verifier *domain.CredentialVerifier,
	audit domain.AuditRecorder,
	publisher domain.EventPublisher,
	m *metrics.CatalogMetrics,
	opts Options,
) *CatalogCommandService {
	return &CatalogCommandService{
		repo:      repo,
		verifier:  verifier,
		audit:     audit,
		publisher: publisher,
		metrics:   m,
		opts:      opts.withDefaults(),
	}
}

// CreateProduct 鉴权、校验后写入新商品，返回存储分配的 ID
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (string, error) {
	if err := s.Authorize(ctx, cmd.Credentials, cmd.ClientIP, cmd.Path); err != nil {
		return "", err
	}

	draft, err := domain.ValidateProductPayload(cmd.Payload)
	if err != nil {
		logger.Info(ctx, "product payload rejected", "error", err)
		return "", err
	}

	product := domain.NewProduct(draft, s.opts.Clock())

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	start := time.Now()
	id, err := s.repo.Create(storeCtx, product)
	s.metrics.ObserveStore("create", time.Since(start))
	if err != nil {
		if errors.Is(err, domain.ErrPermissionDenied) {
			logger.Error(ctx, "store rejected product write", "error", err)
			return "", domain.NewForbiddenError(err)
		}
		logger.Error(ctx, "failed to create product", "error", err)
		return "", domain.NewInternalError("Internal server error", err)
	}
	product.ID = id
	s.metrics.RecordProductCreated()
	logger.Info(ctx, "product created", "product_id", id, "category", product.Category)

	s.publishCreated(ctx, product)
	return id, nil
}

// Authorize 校验管理员凭证，失败时记录审计并返回 Unauthorized
func (s *CatalogCommandService) Authorize(ctx context.Context, creds domain.Credentials, clientIP, path string) error {
	decision := s.verifier.Verify(creds)
	if decision.Authorized {
		logger.Debug(ctx, "admin credential verified", "authorized", true)
		return nil
	}

	if decision.Reason == domain.ReasonSecretNotConfigured {
		logger.Error(ctx, "admin secret is not configured, rejecting write")
	} else {
		logger.Warn(ctx, "admin credential rejected", "authorized", false, "reason", decision.Reason)
	}
	s.metrics.RecordAuthFailure(decision.Reason)

	entry := domain.AuthAuditEntry{
		RequestID:  logger.RequestID(ctx),
		ClientIP:   clientIP,
		Path:       path,
		Reason:     decision.Reason,
		OccurredAt: s.opts.Clock(),
	}
	if s.audit != nil {
		if err := s.audit.RecordAuthFailure(ctx, entry); err != nil {
			logger.Error(ctx, "failed to record auth audit entry", "error", err)
		}
	}
	return domain.NewUnauthorizedError()
}

func (s *CatalogCommandService) publishCreated(ctx context.Context, p *domain.Product) {
	if s.publisher == nil {
		return
	}
	event := domain.ProductCreatedEvent{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		Timestamp: p.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, domain.TopicProductCreated, p.ID, event); err != nil {
		logger.Warn(ctx, "failed to publish product event", "product_id", p.ID, "error", err)
	}
}
