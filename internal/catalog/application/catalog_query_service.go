package application

import (
	"context"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// ListProductsQuery 商品列表查询参数，Limit 为原始字符串
type ListProductsQuery struct {
	Category string
	Limit    string
}

// ListProductsResult 商品列表结果
type ListProductsResult struct {
	Products []*domain.Product
	Total    int
}

// CatalogQueryService 商品目录查询服务
type CatalogQueryService struct {
	repo    domain.ProductRepository
	metrics *metrics.CatalogMetrics
	opts    Options
}

// NewCatalogQueryService 创建商品目录查询服务实例
func NewCatalogQueryService(repo domain.ProductRepository, m *metrics.CatalogMetrics, opts Options) *CatalogQueryService {
	return &CatalogQueryService{
		repo:    repo,
		metrics: m,
		opts:    opts.withDefaults(),
	}
}

// ListProducts 按创建时间倒序列出商品
func (s *CatalogQueryService) ListProducts(ctx context.Context, q ListProductsQuery) (*ListProductsResult, error) {
	query := domain.NewListQuery(q.Category, q.Limit, s.opts.PageSize)

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	start := time.Now()
	products, err := s.repo.List(storeCtx, query)
	s.metrics.ObserveStore("list", time.Since(start))
	if err != nil {
		logger.Error(ctx, "failed to fetch products", "category", query.Category, "limit", query.Limit, "error", err)
		return nil, domain.NewInternalError("Failed to fetch products", err)
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return &ListProductsResult{Products: products, Total: len(products)}, nil
}
