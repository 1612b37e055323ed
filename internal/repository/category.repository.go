package repository

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
)

type CategoryRepository struct {
	*pg.DB
	store liveStore[CategoryEntity]
}

func NewCategoryRepository(db *pg.DB) *CategoryRepository {
	return &CategoryRepository{
		DB:    db,
		store: newLiveStore[CategoryEntity](db, model.ErrCategoryNotFound, model.ErrCategoryAlreadyExists),
	}
}

func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	entity := toCategoryEntity(c)
	entity.ID = 0
	if err := r.store.Create(ctx, entity); err != nil {
		return nil, err
	}
	return toCategoryModel(entity), nil
}

func (r *CategoryRepository) Get(ctx context.Context, id int64) (*model.Category, error) {
	e, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategoryModel(e), nil
}

func (r *CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.store.Exists(ctx, id)
}

func (r *CategoryRepository) NameAvailable(ctx context.Context, name string, excludeID int64) (bool, error) {
	return r.store.UniqueAmongLive(ctx, "name", name, excludeID)
}

func (r *CategoryRepository) Update(ctx context.Context, c *model.Category) (*model.Category, error) {
	entity := toCategoryEntity(c)
	if err := r.store.Save(ctx, entity); err != nil {
		return nil, err
	}
	return toCategoryModel(entity), nil
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, id int64) (*model.Category, error) {
	e, err := r.store.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategoryModel(e), nil
}

func (r *CategoryRepository) List(ctx context.Context, p model.PageRequest) ([]*model.Category, int64, error) {
	rows, total, err := r.store.Page(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return toCategoryModels(rows), total, nil
}
