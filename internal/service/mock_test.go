package service_test

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/casecraft/casecraft-api/internal/model"
	"github.com/casecraft/casecraft-api/internal/repository"
	"github.com/casecraft/casecraft-api/internal/storage/db"
)

// fakeDB runs transaction funcs inline, without a database.
type fakeDB struct {
	txCount int
}

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (f *fakeDB) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (f *fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	return nil
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	f.txCount++
	return txFunc(f)
}

type fakeUserRepo struct {
	createUser        func(ctx context.Context, params repository.CreateUserParams) (model.User, error)
	getUserByEmail    func(ctx context.Context, email string) (model.User, error)
	getUserByUsername func(ctx context.Context, username string) (model.User, error)
}

func (f *fakeUserRepo) WithDB(db.DB) repository.UserRepository { return f }

func (f *fakeUserRepo) CreateUser(ctx context.Context, params repository.CreateUserParams) (model.User, error) {
	return f.createUser(ctx, params)
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return f.getUserByEmail(ctx, email)
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return f.getUserByUsername(ctx, username)
}

type fakeProductRepo struct {
	createProduct func(ctx context.Context, params repository.CreateProductParams) (model.Product, error)
	getProduct    func(ctx context.Context, id int64) (model.Product, error)
	listProducts  func(ctx context.Context, params repository.ListProductsParams) ([]model.Product, error)
	updateProduct func(ctx context.Context, id int64, params repository.UpdateProductParams) (model.Product, error)
	deleteProduct func(ctx context.Context, id int64) (model.Product, error)
}

func (f *fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return f }

func (f *fakeProductRepo) CreateProduct(ctx context.Context, params repository.CreateProductParams) (model.Product, error) {
	return f.createProduct(ctx, params)
}

func (f *fakeProductRepo) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	return f.getProduct(ctx, id)
}

func (f *fakeProductRepo) ListProducts(ctx context.Context, params repository.ListProductsParams) ([]model.Product, error) {
	return f.listProducts(ctx, params)
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, id int64, params repository.UpdateProductParams) (model.Product, error) {
	return f.updateProduct(ctx, id, params)
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id int64) (model.Product, error) {
	return f.deleteProduct(ctx, id)
}

type fakeOutboxMsgRepo struct {
	created []repository.CreateOutboxMsgParams
}

func (f *fakeOutboxMsgRepo) WithDB(db.DB) repository.OutboxMsgRepository { return f }

func (f *fakeOutboxMsgRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	f.created = append(f.created, params)
	return nil
}

func (f *fakeOutboxMsgRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (f *fakeOutboxMsgRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}
