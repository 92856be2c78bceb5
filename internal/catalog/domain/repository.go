package domain

import "context"

// ProductRepository 商品文档存储
// Create 返回存储分配的标识；权限被拒绝时返回包装了 ErrPermissionDenied 的错误
type ProductRepository interface {
	Create(ctx context.Context, product *Product) (string, error)
	List(ctx context.Context, q ListQuery) ([]*Product, error)
}
