// Package http 提供商品目录管理端的 HTTP 接口
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

const (
	forbiddenMessage = "Permission denied: Check Firebase security rules"
	forbiddenDetails = "The current user does not have permission to write to the products collection"

	// 请求体上限 1MB
	maxBodyBytes = 1 << 20
)

// CatalogHandler 负责处理商品目录相关的 HTTP 请求
type CatalogHandler struct {
	app         *application.CatalogApplicationService
	metrics     *metrics.CatalogMetrics
	serviceName string
	protectList bool
}

// HandlerOptions 处理器选项
type HandlerOptions struct {
	ServiceName string
	// 列表接口是否要求管理员凭证
	ProtectList bool
}

// NewCatalogHandler 创建 HTTP 处理器
func NewCatalogHandler(app *application.CatalogApplicationService, m *metrics.CatalogMetrics, opts HandlerOptions) *CatalogHandler {
	if opts.ServiceName == "" {
		opts.ServiceName = "catalog"
	}
	return &CatalogHandler{
		app:         app,
		metrics:     m,
		serviceName: opts.ServiceName,
		protectList: opts.ProtectList,
	}
}

// RegisterRoutes 注册路由，writeMiddleware 只作用于写接口
func (h *CatalogHandler) RegisterRoutes(router gin.IRouter, writeMiddleware ...gin.HandlerFunc) {
	router.GET("/health", h.Health)

	api := router.Group("/admin/products")
	{
		api.GET("", h.ListProducts)
		api.POST("", append(writeMiddleware, h.CreateProduct)...)
	}
}

// Health 健康检查
func (h *CatalogHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   h.serviceName,
		"timestamp": time.Now().Unix(),
	})
}

// ListProducts 列出商品
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	if h.protectList {
		if err := h.app.Authorize(ctx, credentialsFrom(c), c.ClientIP(), c.Request.URL.Path); err != nil {
			h.fail(c, "list", err)
			h.record("list", c, start)
			return
		}
	}

	result, err := h.app.ListProducts(ctx, application.ListProductsQuery{
		Category: c.Query("category"),
		Limit:    c.Query("limit"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		h.record("list", c, start)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": result.Products,
		"total":    result.Total,
	})
	h.record("list", c, start)
}

// CreateProduct 处理创建商品
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()
	creds := credentialsFrom(c)

	// 先鉴权再读取请求体
	if err := h.app.Authorize(ctx, creds, c.ClientIP(), c.Request.URL.Path); err != nil {
		h.fail(c, "create", err)
		h.record("create", c, start)
		return
	}

	payload, err := decodePayload(c.Request.Body)
	if err != nil {
		logger.Info(ctx, "invalid product request body", "error", err)
		h.fail(c, "create", domain.NewInvalidBodyError(err))
		h.record("create", c, start)
		return
	}

	id, err := h.app.CreateProduct(ctx, application.CreateProductCommand{
		Payload:     payload,
		Credentials: creds,
		ClientIP:    c.ClientIP(),
		Path:        c.Request.URL.Path,
	})
	if err != nil {
		h.fail(c, "create", err)
		h.record("create", c, start)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"productId": id,
		"message":   "Product created successfully",
	})
	h.record("create", c, start)
}

// fail 把领域错误映射为 HTTP 响应
func (h *CatalogHandler) fail(c *gin.Context, operation string, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.NewInternalError("Internal server error", err)
	}

	switch de.Kind {
	case domain.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": de.Message})
	case domain.KindInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": de.Message})
	case domain.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": forbiddenMessage, "details": forbiddenDetails})
	default:
		body := gin.H{"error": de.Message}
		if de.Cause != nil {
			body["details"] = de.Cause.Error()
		}
		logger.Error(c.Request.Context(), "catalog request failed", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, body)
	}
}

func (h *CatalogHandler) record(operation string, c *gin.Context, start time.Time) {
	h.metrics.RecordRequest(operation, strconv.Itoa(c.Writer.Status()), time.Since(start))
}

func credentialsFrom(c *gin.Context) domain.Credentials {
	return domain.Credentials{
		Authorization: c.GetHeader("Authorization"),
		AdminToken:    c.GetHeader("X-Admin-Token"),
	}
}

// decodePayload 解析 JSON 对象请求体，数字保留为 float64
func decodePayload(body io.Reader) (map[string]any, error) {
	if body == nil {
		return nil, errors.New("empty body")
	}
	var payload map[string]any
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("body must be a JSON object")
	}
	return payload, nil
}
