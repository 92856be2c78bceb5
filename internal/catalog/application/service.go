package application

import (
	"context"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

const defaultStoreTimeout = 5 * time.Second

// Options 服务运行参数
type Options struct {
	PageSize     domain.PageSizePolicy
	StoreTimeout time.Duration
	Clock        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.PageSize.Default <= 0 {
		o.PageSize = domain.DefaultPageSizePolicy()
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = defaultStoreTimeout
	}
	if o.Clock == nil {
		o.Clock = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// Dependencies 商品目录服务依赖
type Dependencies struct {
	Repo      domain.ProductRepository
	Verifier  *domain.CredentialVerifier
	Audit     domain.AuditRecorder
	Publisher domain.EventPublisher
	Metrics   *metrics.CatalogMetrics
}

// CatalogApplicationService 商品目录服务门面，整合命令服务和查询服务
type CatalogApplicationService struct {
	commandService *CatalogCommandService
	queryService   *CatalogQueryService
}

// NewCatalogApplicationService 创建商品目录服务门面实例
func NewCatalogApplicationService(deps Dependencies, opts Options) *CatalogApplicationService {
	return &CatalogApplicationService{
		commandService: NewCatalogCommandService(deps.Repo, deps.Verifier, deps.Audit, deps.Publisher, deps.Metrics, opts),
		queryService:   NewCatalogQueryService(deps.Repo, deps.Metrics, opts),
	}
}

// CreateProduct 处理创建商品
func (s *CatalogApplicationService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (string, error) {
	return s.commandService.CreateProduct(ctx, cmd)
}

// ListProducts 列出商品
func (s *CatalogApplicationService) ListProducts(ctx context.Context, q ListProductsQuery) (*ListProductsResult, error) {
	return s.queryService.ListProducts(ctx, q)
}

// Authorize 校验管理员凭证，供受保护的读接口使用
func (s *CatalogApplicationService) Authorize(ctx context.Context, creds domain.Credentials, clientIP, path string) error {
	return s.commandService.Authorize(ctx, creds, clientIP, path)
}
