package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName 商品集合
const CollectionName = "products"

// MongoDB "Unauthorized" 错误码
const codeUnauthorized = 13

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	Subcategory string             `bson:"subcategory"`
	Image       string             `bson:"image"`
	Images      []string           `bson:"images"`
	InStock     bool               `bson:"inStock"`
	Rating      float64            `bson:"rating"`
	Reviews     int                `bson:"reviews"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type productRepository struct{ coll *mongo.Collection }

func NewProductRepository(coll *mongo.Collection) domain.ProductRepository {
	return &productRepository{coll: coll}
}

// EnsureIndexes 创建列表查询使用的索引
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	return nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) (string, error) {
	doc := toDocument(p)
	doc.ID = primitive.NewObjectID()

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", classify("insert product", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert product: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *productRepository) List(ctx context.Context, q domain.ListQuery) ([]*domain.Product, error) {
	filter, opts := buildFind(q)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify("find products", err)
	}
	defer cur.Close(ctx)

	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify("decode products", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		products = append(products, toDomain(&docs[i]))
	}
	return products, nil
}

// buildFind 按 createdAt 倒序，_id 倒序作为稳定次序，可选分类等值过滤
func buildFind(q domain.ListQuery) (bson.D, *options.FindOptions) {
	filter := bson.D{}
	if q.HasCategory() {
		filter = append(filter, bson.E{Key: "category", Value: q.Category})
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(q.Limit))
	return filter, opts
}

func classify(op string, err error) error {
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeUnauthorized) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toDocument(p *domain.Product) *productDocument {
	return &productDocument{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Image:       p.Image,
		Images:      p.Images,
		InStock:     p.InStock,
		Rating:      p.Rating,
		Reviews:     p.Reviews,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDomain(d *productDocument) *domain.Product {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Product{
		ID:          d.ID.Hex(),
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
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
