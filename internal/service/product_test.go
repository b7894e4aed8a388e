package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/event"
	"github.com/casecraft/casecraft-api/internal/model"
	"github.com/casecraft/casecraft-api/internal/repository"
	"github.com/casecraft/casecraft-api/internal/service"
)

var (
	adminUser  = model.User{Base: model.Base{ID: 1}, Username: "admin", IsAdmin: true, IsActive: true}
	normalUser = model.User{Base: model.Base{ID: 2}, Username: "bob", IsActive: true}
)

func TestProductServiceListProducts(t *testing.T) {
	t.Run("Should default skip and limit", func(t *testing.T) {
		var got repository.ListProductsParams
		productRepo := &fakeProductRepo{
			listProducts: func(_ context.Context, params repository.ListProductsParams) ([]model.Product, error) {
				got = params
				return []model.Product{}, nil
			},
		}
		svc := service.NewProductService(&fakeDB{}, productRepo, &fakeOutboxMsgRepo{})

		_, err := svc.ListProducts(context.Background(), service.ListProductsParams{Skip: -5})

		require.NoError(t, err)
		assert.Equal(t, 0, got.Skip)
		assert.Equal(t, 100, got.Limit)
	})

	t.Run("Should pass sort params through unchanged", func(t *testing.T) {
		var got repository.ListProductsParams
		productRepo := &fakeProductRepo{
			listProducts: func(_ context.Context, params repository.ListProductsParams) ([]model.Product, error) {
				got = params
				return nil, nil
			},
		}
		svc := service.NewProductService(&fakeDB{}, productRepo, &fakeOutboxMsgRepo{})

		_, err := svc.ListProducts(context.Background(), service.ListProductsParams{
			Category:  "mug",
			Search:    "red",
			SortBy:    "bogus",
			SortOrder: "DESC",
			Skip:      10,
			Limit:     25,
		})

		require.NoError(t, err)
		assert.Equal(t, "mug", got.Category)
		assert.Equal(t, "red", got.Search)
		assert.Equal(t, "bogus", got.SortBy)
		assert.Equal(t, "DESC", got.SortOrder)
		assert.Equal(t, 10, got.Skip)
		assert.Equal(t, 25, got.Limit)
	})
}

func TestProductServiceCreateProduct(t *testing.T) {
	t.Run("Should reject a non-admin caller", func(t *testing.T) {
		svc := service.NewProductService(&fakeDB{}, &fakeProductRepo{}, &fakeOutboxMsgRepo{})

		_, err := svc.CreateProduct(context.Background(), service.CreateProductParams{Name: "Case"}, normalUser)

		assert.ErrorIs(t, err, apperr.AdminRequiredErr)
	})

	t.Run("Should create the product and record a created event in one transaction", func(t *testing.T) {
		fdb := &fakeDB{}
		outboxRepo := &fakeOutboxMsgRepo{}
		productRepo := &fakeProductRepo{
			createProduct: func(_ context.Context, params repository.CreateProductParams) (model.Product, error) {
				return model.Product{
					Base:     model.Base{ID: 42},
					Name:     params.Name,
					Price:    params.Price,
					Stock:    params.Stock,
					Category: params.Category,
				}, nil
			},
		}
		svc := service.NewProductService(fdb, productRepo, outboxRepo)

		product, err := svc.CreateProduct(context.Background(), service.CreateProductParams{
			Name:     "Leather Case",
			Price:    19.99,
			Stock:    5,
			Category: "phone-case",
		}, adminUser)

		require.NoError(t, err)
		assert.Equal(t, int64(42), product.ID)
		assert.Equal(t, 1, fdb.txCount)

		require.Len(t, outboxRepo.created, 1)
		msg := outboxRepo.created[0]
		assert.Equal(t, event.TopicProductCreated, msg.Topic)
		require.NotNil(t, msg.PartitionKey)
		assert.Equal(t, "42", *msg.PartitionKey)

		var ev event.ProductEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, int64(42), ev.ProductID)
		assert.Equal(t, "Leather Case", ev.Name)
		assert.InDelta(t, 19.99, ev.Price, 0.001)
	})
}

func TestProductServiceUpdateProduct(t *testing.T) {
	t.Run("Should reject a non-admin caller before checking existence", func(t *testing.T) {
		productRepo := &fakeProductRepo{
			updateProduct: func(context.Context, int64, repository.UpdateProductParams) (model.Product, error) {
				t.Fatal("repository must not be consulted for a non-admin caller")
				return model.Product{}, nil
			},
		}
		svc := service.NewProductService(&fakeDB{}, productRepo, &fakeOutboxMsgRepo{})

		_, err := svc.UpdateProduct(context.Background(), 99999, service.UpdateProductParams{}, normalUser)

		assert.ErrorIs(t, err, apperr.AdminRequiredErr)
	})

	t.Run("Should surface not found for a missing id", func(t *testing.T) {
		productRepo := &fakeProductRepo{
			updateProduct: func(context.Context, int64, repository.UpdateProductParams) (model.Product, error) {
				return model.Product{}, apperr.ProductNotFoundErr
			},
		}
		svc := service.NewProductService(&fakeDB{}, productRepo, &fakeOutboxMsgRepo{})

		_, err := svc.UpdateProduct(context.Background(), 99999, service.UpdateProductParams{}, adminUser)

		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})

	t.Run("Should forward only the provided fields", func(t *testing.T) {
		var got repository.UpdateProductParams
		productRepo := &fakeProductRepo{
			updateProduct: func(_ context.Context, _ int64, params repository.UpdateProductParams) (model.Product, error) {
				got = params
				return model.Product{Base: model.Base{ID: 7}}, nil
			},
		}
		svc := service.NewProductService(&fakeDB{}, productRepo, &fakeOutboxMsgRepo{})

		price := 29.99
		_, err := svc.UpdateProduct(context.Background(), 7, service.UpdateProductParams{
			Price: &price,
		}, adminUser)

		require.NoError(t, err)
		require.NotNil(t, got.Price)
		assert.InDelta(t, 29.99, *got.Price, 0.001)
		assert.Nil(t, got.Name)
		assert.Nil(t, got.Stock)
		assert.Nil(t, got.Customizable)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("Should record an updated event", func(t *testing.T) {
		outboxRepo := &fakeOutboxMsgRepo{}
		productRepo := &fakeProductRepo{
			updateProduct: func(context.Context, int64, repository.UpdateProductParams) (model.Product, error) {
				return model.Product{Base: model.Base{ID: 7}}, nil
			},
		}
		svc := service.NewProductService(&fakeDB{}, productRepo, outboxRepo)

		_, err := svc.UpdateProduct(context.Background(), 7, service.UpdateProductParams{}, adminUser)

		require.NoError(t, err)
		require.Len(t, outboxRepo.created, 1)
		assert.Equal(t, event.TopicProductUpdated, outboxRepo.created[0].Topic)
	})
}

func TestProductServiceDeleteProduct(t *testing.T) {
	t.Run("Should reject a non-admin caller", func(t *testing.T) {
		svc := service.NewProductService(&fakeDB{}, &fakeProductRepo{}, &fakeOutboxMsgRepo{})

		_, err := svc.DeleteProduct(context.Background(), 7, normalUser)

		assert.ErrorIs(t, err, apperr.AdminRequiredErr)
	})

	t.Run("Should return the deleted product and record a deleted event", func(t *testing.T) {
		outboxRepo := &fakeOutboxMsgRepo{}
		productRepo := &fakeProductRepo{
			deleteProduct: func(_ context.Context, id int64) (model.Product, error) {
				return model.Product{Base: model.Base{ID: id}, Name: "Gone"}, nil
			},
		}
		svc := service.NewProductService(&fakeDB{}, productRepo, outboxRepo)

		product, err := svc.DeleteProduct(context.Background(), 7, adminUser)

		require.NoError(t, err)
		assert.Equal(t, "Gone", product.Name)
		require.Len(t, outboxRepo.created, 1)
		assert.Equal(t, event.TopicProductDeleted, outboxRepo.created[0].Topic)
	})
}
