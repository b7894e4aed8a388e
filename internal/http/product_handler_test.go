package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/model"
	"github.com/casecraft/casecraft-api/internal/service"
)

var (
	testAdmin = model.User{Base: model.Base{ID: 1}, Username: "admin", IsAdmin: true, IsActive: true}
	testUser  = model.User{Base: model.Base{ID: 2}, Username: "bob", IsActive: true}
)

func TestListProductsHandler(t *testing.T) {
	t.Run("Should pass catalog query parameters through", func(t *testing.T) {
		var got service.ListProductsParams
		productSvc := &fakeProductService{
			listProducts: func(_ context.Context, params service.ListProductsParams) ([]model.Product, error) {
				got = params
				return []model.Product{}, nil
			},
		}
		r := newTestRouter(t, &fakeAuthService{}, productSvc)

		req := httptest.NewRequest(http.MethodGet,
			"/api/products?category=mug&search=red&sort_by=bogus&sort_order=DESC&skip=10&limit=25", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "mug", got.Category)
		assert.Equal(t, "red", got.Search)
		assert.Equal(t, "bogus", got.SortBy)
		assert.Equal(t, "DESC", got.SortOrder)
		assert.Equal(t, 10, got.Skip)
		assert.Equal(t, 25, got.Limit)
	})

	t.Run("Should return an empty JSON array when nothing matches", func(t *testing.T) {
		productSvc := &fakeProductService{
			listProducts: func(context.Context, service.ListProductsParams) ([]model.Product, error) {
				return []model.Product{}, nil
			},
		}
		r := newTestRouter(t, &fakeAuthService{}, productSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "[]\n", resp.Body.String())
	})

	t.Run("Should reject a non-numeric skip", func(t *testing.T) {
		r := newTestRouter(t, &fakeAuthService{}, &fakeProductService{})

		req := httptest.NewRequest(http.MethodGet, "/api/products?skip=abc", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestGetProductHandler(t *testing.T) {
	t.Run("Should return a product by id", func(t *testing.T) {
		productSvc := &fakeProductService{
			getProduct: func(_ context.Context, id int64) (model.Product, error) {
				return model.Product{Base: model.Base{ID: id}, Name: "Leather Case"}, nil
			},
		}
		r := newTestRouter(t, &fakeAuthService{}, productSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/products/7", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Leather Case")
	})

	t.Run("Should map a missing product to 404", func(t *testing.T) {
		productSvc := &fakeProductService{
			getProduct: func(context.Context, int64) (model.Product, error) {
				return model.Product{}, apperr.ProductNotFoundErr
			},
		}
		r := newTestRouter(t, &fakeAuthService{}, productSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/products/99999", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), apperr.ProductNotFoundCode)
	})
}

func TestCreateProductHandler(t *testing.T) {
	t.Run("Should create a product as admin", func(t *testing.T) {
		authSvc := &fakeAuthService{}
		authAs(authSvc, testAdmin)
		productSvc := &fakeProductService{
			createProduct: func(_ context.Context, params service.CreateProductParams, principal model.User) (model.Product, error) {
				require.True(t, principal.IsAdmin)
				return model.Product{Base: model.Base{ID: 42}, Name: params.Name}, nil
			},
		}
		r := newTestRouter(t, authSvc, productSvc)

		req := httptest.NewRequest(http.MethodPost, "/api/products",
			strings.NewReader(`{"name":"Leather Case","price":19.99,"stock":5}`))
		req.Header.Set("Authorization", "Bearer token-123")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusCreated, resp.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, float64(42), body["id"])
	})

	t.Run("Should reject an unauthenticated caller", func(t *testing.T) {
		r := newTestRouter(t, &fakeAuthService{}, &fakeProductService{})

		req := httptest.NewRequest(http.MethodPost, "/api/products",
			strings.NewReader(`{"name":"Leather Case"}`))
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("Should flag a non-admin caller with the error header", func(t *testing.T) {
		authSvc := &fakeAuthService{}
		authAs(authSvc, testUser)
		productSvc := &fakeProductService{
			createProduct: func(context.Context, service.CreateProductParams, model.User) (model.Product, error) {
				return model.Product{}, apperr.AdminRequiredErr
			},
		}
		r := newTestRouter(t, authSvc, productSvc)

		req := httptest.NewRequest(http.MethodPost, "/api/products",
			strings.NewReader(`{"name":"Leather Case"}`))
		req.Header.Set("Authorization", "Bearer token-123")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, apperr.AdminRequiredCode, resp.Header().Get("X-Error"))
	})

	t.Run("Should reject a body without a name", func(t *testing.T) {
		authSvc := &fakeAuthService{}
		authAs(authSvc, testAdmin)
		r := newTestRouter(t, authSvc, &fakeProductService{})

		req := httptest.NewRequest(http.MethodPost, "/api/products",
			strings.NewReader(`{"price":19.99}`))
		req.Header.Set("Authorization", "Bearer token-123")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestUpdateProductHandler(t *testing.T) {
	t.Run("Should forward only the provided fields", func(t *testing.T) {
		authSvc := &fakeAuthService{}
		authAs(authSvc, testAdmin)

		var got service.UpdateProductParams
		productSvc := &fakeProductService{
			updateProduct: func(_ context.Context, id int64, params service.UpdateProductParams, _ model.User) (model.Product, error) {
				require.Equal(t, int64(7), id)
				got = params
				return model.Product{Base: model.Base{ID: id}}, nil
			},
		}
		r := newTestRouter(t, authSvc, productSvc)

		req := httptest.NewRequest(http.MethodPut, "/api/products/7",
			strings.NewReader(`{"price":29.99}`))
		req.Header.Set("Authorization", "Bearer token-123")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		require.NotNil(t, got.Price)
		assert.InDelta(t, 29.99, *got.Price, 0.001)
		assert.Nil(t, got.Name)
		assert.Nil(t, got.Stock)
	})

	t.Run("Should answer forbidden for a non-admin even when the id does not exist", func(t *testing.T) {
		authSvc := &fakeAuthService{}
		authAs(authSvc, testUser)
		productSvc := &fakeProductService{
			updateProduct: func(context.Context, int64, service.UpdateProductParams, model.User) (model.Product, error) {
				return model.Product{}, apperr.AdminRequiredErr
			},
		}
		r := newTestRouter(t, authSvc, productSvc)

		req := httptest.NewRequest(http.MethodPut, "/api/products/99999",
			strings.NewReader(`{"name":"X"}`))
		req.Header.Set("Authorization", "Bearer token-123")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, apperr.AdminRequiredCode, resp.Header().Get("X-Error"))
	})
}

func TestDeleteProductHandler(t *testing.T) {
	t.Run("Should return the deleted product", func(t *testing.T) {
		authSvc := &fakeAuthService{}
		authAs(authSvc, testAdmin)
		productSvc := &fakeProductService{
			deleteProduct: func(_ context.Context, id int64, _ model.User) (model.Product, error) {
				return model.Product{Base: model.Base{ID: id}, Name: "Gone"}, nil
			},
		}
		r := newTestRouter(t, authSvc, productSvc)

		req := httptest.NewRequest(http.MethodDelete, "/api/products/7", nil)
		req.Header.Set("Authorization", "Bearer token-123")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Gone")
	})

	t.Run("Should map a missing product to 404 for an admin", func(t *testing.T) {
		authSvc := &fakeAuthService{}
		authAs(authSvc, testAdmin)
		productSvc := &fakeProductService{
			deleteProduct: func(context.Context, int64, model.User) (model.Product, error) {
				return model.Product{}, apperr.ProductNotFoundErr
			},
		}
		r := newTestRouter(t, authSvc, productSvc)

		req := httptest.NewRequest(http.MethodDelete, "/api/products/99999", nil)
		req.Header.Set("Authorization", "Bearer token-123")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
