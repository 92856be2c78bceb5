package domain

import "time"

// PlaceholderImage 未提供主图时使用的占位图
const PlaceholderImage = "/placeholder.svg?height=300&width=300"

// Product 商品
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Image       string    `json:"image"`
	Images      []string  `json:"images"`
	InStock     bool      `json:"inStock"`
	Rating      float64   `json:"rating"`
	Reviews     int       `json:"reviews"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductDraft 经过校验和默认值填充、尚未写入存储的商品
// 时间戳由服务在写入时赋值
type ProductDraft struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Subcategory string
	Image       string
	Images      []string
	InStock     bool
	Rating      float64
	Reviews     int
}

// NewProduct 以写入时间戳化草稿，createdAt 与 updatedAt 取同一时刻
func NewProduct(d *ProductDraft, now time.Time) *Product {
	images := make([]string, len(d.Images))
	copy(images, d.Images)
	return &Product{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Image:       d.Image,
		Images:      images,
		InStock:     d.InStock,
		Rating:      d.Rating,
		Reviews:     d.Reviews,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
