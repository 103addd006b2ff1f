package service_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/tuanvumaihuynh/product-pricing/internal/model"
	"github.com/tuanvumaihuynh/product-pricing/internal/repository"
	"github.com/tuanvumaihuynh/product-pricing/internal/storage/db"
)

var errInjected = errors.New("injected failure")

// fakeStore is an in-memory stand-in for the products, price_history and
// outbox_messages tables.
type fakeStore struct {
	products      map[int64]model.Product
	histories     []model.PriceHistory
	outboxMsgs    []repository.CreateOutboxMsgParams
	nextProductID int64
	nextHistoryID int64

	// failOn makes the named repository method return errInjected.
	failOn string
	// txCount counts top level transactions.
	txCount int
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: map[int64]model.Product{}}
}

type fakeSnapshot struct {
	products      map[int64]model.Product
	histories     []model.PriceHistory
	outboxMsgs    []repository.CreateOutboxMsgParams
	nextProductID int64
	nextHistoryID int64
}

func (s *fakeStore) snapshot() fakeSnapshot {
	return fakeSnapshot{
		products:      maps.Clone(s.products),
		histories:     slices.Clone(s.histories),
		outboxMsgs:    slices.Clone(s.outboxMsgs),
		nextProductID: s.nextProductID,
		nextHistoryID: s.nextHistoryID,
	}
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.products = snap.products
	s.histories = snap.histories
	s.outboxMsgs = snap.outboxMsgs
	s.nextProductID = snap.nextProductID
	s.nextHistoryID = snap.nextHistoryID
}

func (s *fakeStore) fail(method string) error {
	if s.failOn == method {
		return fmt.Errorf("%s: %w", method, errInjected)
	}
	return nil
}

func (s *fakeStore) seed(products ...model.Product) []model.Product {
	seeded := make([]model.Product, 0, len(products))
	for _, p := range products {
		s.nextProductID++
		p.ID = s.nextProductID
		s.products[p.ID] = p
		seeded = append(seeded, p)
	}
	return seeded
}

func (s *fakeStore) historiesOf(productID int64) []model.PriceHistory {
	var out []model.PriceHistory
	for _, h := range s.histories {
		if h.ProductID == productID {
			out = append(out, h)
		}
	}
	return out
}

func (s *fakeStore) topics() []string {
	topics := make([]string, 0, len(s.outboxMsgs))
	for _, msg := range s.outboxMsgs {
		topics = append(topics, msg.Topic)
	}
	return topics
}

// fakeDB runs transactions against the fake store and restores the store
// snapshot when the transaction function fails.
type fakeDB struct {
	db.DB
	store *fakeStore
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	f.store.txCount++
	snap := f.store.snapshot()
	if err := txFunc(f); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

type fakeProductRepo struct{ store *fakeStore }

var _ repository.ProductRepository = fakeProductRepo{}

func (r fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r fakeProductRepo) CreateProduct(_ context.Context, params repository.CreateProductParams) (model.Product, error) {
	if err := r.store.fail("CreateProduct"); err != nil {
		return model.Product{}, err
	}
	r.store.nextProductID++
	p := model.Product{
		ID:        r.store.nextProductID,
		Name:      params.Name,
		Category:  params.Category,
		Cost:      params.Cost,
		Price:     params.Price,
		CreatedAt: params.CreatedAt,
		UpdatedAt: params.CreatedAt,
	}
	r.store.products[p.ID] = p
	return p, nil
}

func (r fakeProductRepo) GetProduct(_ context.Context, id int64) (model.Product, error) {
	if err := r.store.fail("GetProduct"); err != nil {
		return model.Product{}, err
	}
	p, ok := r.store.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("get product %d: %w", id, repository.ErrNotFound)
	}
	return p, nil
}

func (r fakeProductRepo) ExistsProduct(_ context.Context, id int64) (bool, error) {
	if err := r.store.fail("ExistsProduct"); err != nil {
		return false, err
	}
	_, ok := r.store.products[id]
	return ok, nil
}

func (r fakeProductRepo) ListAllProducts(_ context.Context) ([]model.Product, error) {
	if err := r.store.fail("ListAllProducts"); err != nil {
		return nil, err
	}
	return r.sorted(func(model.Product) bool { return true }), nil
}

func (r fakeProductRepo) ListProductsByCategory(_ context.Context, category string) ([]model.Product, error) {
	if err := r.store.fail("ListProductsByCategory"); err != nil {
		return nil, err
	}
	return r.sorted(func(p model.Product) bool { return p.Category == category }), nil
}

func (r fakeProductRepo) sorted(keep func(model.Product) bool) []model.Product {
	var out []model.Product
	for _, p := range r.store.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeProductRepo) UpdateProduct(_ context.Context, product model.Product) error {
	if err := r.store.fail("UpdateProduct"); err != nil {
		return err
	}
	if _, ok := r.store.products[product.ID]; !ok {
		return fmt.Errorf("update product %d: %w", product.ID, repository.ErrNotFound)
	}
	r.store.products[product.ID] = product
	return nil
}

func (r fakeProductRepo) UpdateProductPrices(_ context.Context, params repository.UpdateProductPricesParams) error {
	if err := r.store.fail("UpdateProductPrices"); err != nil {
		return err
	}
	for _, item := range params.Items {
		p, ok := r.store.products[item.ID]
		if !ok {
			return fmt.Errorf("update product prices %d: %w", item.ID, repository.ErrNotFound)
		}
		p.Price = item.Price
		p.UpdatedAt = item.UpdatedAt
		r.store.products[item.ID] = p
	}
	return nil
}

func (r fakeProductRepo) DeleteProduct(_ context.Context, id int64) error {
	if err := r.store.fail("DeleteProduct"); err != nil {
		return err
	}
	if _, ok := r.store.products[id]; !ok {
		return fmt.Errorf("delete product %d: %w", id, repository.ErrNotFound)
	}
	delete(r.store.products, id)
	return nil
}

type fakePriceHistoryRepo struct{ store *fakeStore }

var _ repository.PriceHistoryRepository = fakePriceHistoryRepo{}

func (r fakePriceHistoryRepo) WithDB(db.DB) repository.PriceHistoryRepository { return r }

func (r fakePriceHistoryRepo) CreatePriceHistory(_ context.Context, params repository.CreatePriceHistoryParams) (model.PriceHistory, error) {
	if err := r.store.fail("CreatePriceHistory"); err != nil {
		return model.PriceHistory{}, err
	}
	return r.insert(params), nil
}

func (r fakePriceHistoryRepo) BulkCreatePriceHistories(_ context.Context, params []repository.CreatePriceHistoryParams) ([]model.PriceHistory, error) {
	if err := r.store.fail("BulkCreatePriceHistories"); err != nil {
		return nil, err
	}
	out := make([]model.PriceHistory, 0, len(params))
	for _, p := range params {
		out = append(out, r.insert(p))
	}
	return out, nil
}

func (r fakePriceHistoryRepo) insert(params repository.CreatePriceHistoryParams) model.PriceHistory {
	r.store.nextHistoryID++
	h := model.PriceHistory{
		ID:        r.store.nextHistoryID,
		ProductID: params.ProductID,
		OldPrice:  params.OldPrice,
		NewPrice:  params.NewPrice,
		Reason:    params.Reason,
		CreatedAt: params.CreatedAt,
	}
	r.store.histories = append(r.store.histories, h)
	return h
}

func (r fakePriceHistoryRepo) ListPriceHistoriesByProduct(_ context.Context, productID int64) ([]model.PriceHistory, error) {
	if err := r.store.fail("ListPriceHistoriesByProduct"); err != nil {
		return nil, err
	}
	out := r.store.historiesOf(productID)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

type fakeOutboxMsgRepo struct{ store *fakeStore }

var _ repository.OutboxMsgRepository = fakeOutboxMsgRepo{}

func (r fakeOutboxMsgRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r fakeOutboxMsgRepo) CreateOutboxMsgs(_ context.Context, params []repository.CreateOutboxMsgParams) error {
	if err := r.store.fail("CreateOutboxMsgs"); err != nil {
		return err
	}
	r.store.outboxMsgs = append(r.store.outboxMsgs, params...)
	return nil
}

func (r fakeOutboxMsgRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r fakeOutboxMsgRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}
