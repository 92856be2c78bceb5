package domain

import "math"

var requiredFields = []string{"name", "description", "price", "category"}

// ValidateProductPayload 校验创建请求体并填充默认值
// 依次检查必填字段、价格、字段类型，遇到第一个错误即返回
func ValidateProductPayload(payload map[string]any) (*ProductDraft, error) {
	for _, field := range requiredFields {
		if !truthy(payload[field]) {
			return nil, NewMissingFieldError(field)
		}
	}

	price, ok := payload["price"].(float64)
	if !ok || price <= 0 || math.IsInf(price, 0) {
		return nil, NewInvalidPriceError()
	}

	name, ok := payload["name"].(string)
	if !ok {
		return nil, NewFieldTypeError("name")
	}
	description, ok := payload["description"].(string)
	if !ok {
		return nil, NewFieldTypeError("description")
	}
	category, ok := payload["category"].(string)
	if !ok {
		return nil, NewFieldTypeError("category")
	}

	subcategory := stringOr(payload["subcategory"], category)
	image := stringOr(payload["image"], PlaceholderImage)

	images := stringList(payload["images"])
	if len(images) == 0 {
		images = []string{image}
	}

	inStock := true
	if b, ok := payload["inStock"].(bool); ok && !b {
		inStock = false
	}

	rating, _ := payload["rating"].(float64)
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		rating = 0
	}

	// 超出 [0, MaxInt32] 的评论数取默认值 0
	reviews := 0
	if r, ok := payload["reviews"].(float64); ok && r >= 0 && r <= math.MaxInt32 {
		reviews = int(math.Trunc(r))
	}

	return &ProductDraft{
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Subcategory: subcategory,
		Image:       image,
		Images:      images,
		InStock:     inStock,
		Rating:      rating,
		Reviews:     reviews,
	}, nil
}

// truthy 与 JSON 客户端约定一致：缺失、null、false、0、"" 视为未提供
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
