package http_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/casecraft/casecraft-api/internal/config"
	casehttp "github.com/casecraft/casecraft-api/internal/http"
	"github.com/casecraft/casecraft-api/internal/model"
	"github.com/casecraft/casecraft-api/internal/service"
)

type fakeHealth struct {
	err error
}

func (f fakeHealth) IsHealthy(context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

type fakeAuthService struct {
	register      func(ctx context.Context, params service.RegisterParams) (model.User, error)
	login         func(ctx context.Context, identifier, password string) (service.Credential, error)
	currentUser   func(ctx context.Context, subject string) (model.User, error)
	validateToken func(token string) (string, error)
}

func (f *fakeAuthService) Register(ctx context.Context, params service.RegisterParams) (model.User, error) {
	return f.register(ctx, params)
}

func (f *fakeAuthService) Login(ctx context.Context, identifier, password string) (service.Credential, error) {
	return f.login(ctx, identifier, password)
}

func (f *fakeAuthService) CurrentUser(ctx context.Context, subject string) (model.User, error) {
	return f.currentUser(ctx, subject)
}

func (f *fakeAuthService) ValidateToken(token string) (string, error) {
	return f.validateToken(token)
}

type fakeProductService struct {
	listProducts  func(ctx context.Context, params service.ListProductsParams) ([]model.Product, error)
	getProduct    func(ctx context.Context, id int64) (model.Product, error)
	createProduct func(ctx context.Context, params service.CreateProductParams, principal model.User) (model.Product, error)
	updateProduct func(ctx context.Context, id int64, params service.UpdateProductParams, principal model.User) (model.Product, error)
	deleteProduct func(ctx context.Context, id int64, principal model.User) (model.Product, error)
}

func (f *fakeProductService) ListProducts(ctx context.Context, params service.ListProductsParams) ([]model.Product, error) {
	return f.listProducts(ctx, params)
}

func (f *fakeProductService) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	return f.getProduct(ctx, id)
}

func (f *fakeProductService) CreateProduct(ctx context.Context, params service.CreateProductParams, principal model.User) (model.Product, error) {
	return f.createProduct(ctx, params, principal)
}

func (f *fakeProductService) UpdateProduct(ctx context.Context, id int64, params service.UpdateProductParams, principal model.User) (model.Product, error) {
	return f.updateProduct(ctx, id, params, principal)
}

func (f *fakeProductService) DeleteProduct(ctx context.Context, id int64, principal model.User) (model.Product, error) {
	return f.deleteProduct(ctx, id, principal)
}

// authAs wires the fake auth service so any bearer token resolves to user.
func authAs(f *fakeAuthService, user model.User) {
	f.validateToken = func(string) (string, error) { return user.Username, nil }
	f.currentUser = func(context.Context, string) (model.User, error) { return user, nil }
}

func newTestRouter(t *testing.T, authSvc service.AuthService, productSvc service.ProductService) chi.Router {
	t.Helper()

	svc := casehttp.New(
		config.HTTP{},
		slog.New(slog.DiscardHandler),
		fakeHealth{},
		authSvc,
		productSvc,
	)

	r := chi.NewRouter()
	svc.RegisterHandlers(r)
	return r
}
