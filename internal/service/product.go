package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/event"
	"github.com/casecraft/casecraft-api/internal/model"
	"github.com/casecraft/casecraft-api/internal/repository"
	"github.com/casecraft/casecraft-api/internal/storage/db"
	"github.com/casecraft/casecraft-api/pkg/outbox"
	"github.com/casecraft/casecraft-api/pkg/ptr"
)

const defaultListLimit = 100

type CreateProductParams struct {
	Name                 string
	Description          string
	Price                float64
	Stock                int
	ImageURL             string
	Category             string
	Customizable         bool
	CustomizationOptions json.RawMessage
}

// UpdateProductParams is a merge-patch: nil fields are left untouched.
type UpdateProductParams struct {
	Name                 *string
	Description          *string
	Price                *float64
	Stock                *int
	ImageURL             *string
	Category             *string
	Customizable         *bool
	CustomizationOptions json.RawMessage
}

type ListProductsParams struct {
	Category  string
	Search    string
	SortBy    string
	SortOrder string
	Skip      int
	Limit     int
}

type ProductService interface {
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams, principal model.User) (model.Product, error)
	UpdateProduct(ctx context.Context, id int64, params UpdateProductParams, principal model.User) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64, principal model.User) (model.Product, error)
}

type productService struct {
	db            db.DB
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	if params.Skip < 0 {
		params.Skip = 0
	}
	if params.Limit <= 0 {
		params.Limit = defaultListLimit
	}

	products, err := s.productRepo.ListProducts(ctx, repository.ListProductsParams{
		Category:  params.Category,
		Search:    params.Search,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
		Skip:      params.Skip,
		Limit:     params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("product repository list products: %w", err)
	}

	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get product: %w", err)
	}

	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams, principal model.User) (model.Product, error) {
	if !principal.IsAdmin {
		return model.Product{}, apperr.AdminRequiredErr
	}

	var product model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		created, err := s.productRepo.
			WithDB(db).
			CreateProduct(ctx, repository.CreateProductParams{
				Name:                 params.Name,
				Description:          params.Description,
				Price:                params.Price,
				Stock:                params.Stock,
				ImageURL:             params.ImageURL,
				Category:             params.Category,
				Customizable:         params.Customizable,
				CustomizationOptions: params.CustomizationOptions,
			})
		if err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}
		product = created

		return s.recordProductEvent(ctx, db, event.TopicProductCreated, product)
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, params UpdateProductParams, principal model.User) (model.Product, error) {
	// The role gate comes strictly before the existence check: a non-admin
	// caller is told "forbidden" even for an id that does not exist.
	if !principal.IsAdmin {
		return model.Product{}, apperr.AdminRequiredErr
	}

	var product model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		updated, err := s.productRepo.
			WithDB(db).
			UpdateProduct(ctx, id, repository.UpdateProductParams{
				Name:                 params.Name,
				Description:          params.Description,
				Price:                params.Price,
				Stock:                params.Stock,
				ImageURL:             params.ImageURL,
				Category:             params.Category,
				Customizable:         params.Customizable,
				CustomizationOptions: params.CustomizationOptions,
				UpdatedAt:            time.Now(),
			})
		if err != nil {
			return fmt.Errorf("product repository update product: %w", err)
		}
		product = updated

		return s.recordProductEvent(ctx, db, event.TopicProductUpdated, product)
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64, principal model.User) (model.Product, error) {
	if !principal.IsAdmin {
		return model.Product{}, apperr.AdminRequiredErr
	}

	var product model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		deleted, err := s.productRepo.
			WithDB(db).
			DeleteProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository delete product: %w", err)
		}
		product = deleted

		return s.recordProductEvent(ctx, db, event.TopicProductDeleted, product)
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *productService) recordProductEvent(ctx context.Context, db db.DB, topic string, product model.Product) error {
	ev := event.ProductEvent{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
		Category:  product.Category,
	}

	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(strconv.FormatInt(product.ID, 10)),
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}
