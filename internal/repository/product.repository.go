package repository

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"gorm.io/gorm"
)

type ProductRepository struct {
	*pg.DB
	store liveStore[ProductEntity]
}

func NewProductRepository(db *pg.DB) *ProductRepository {
	return &ProductRepository{
		DB:    db,
		store: newLiveStore[ProductEntity](db, model.ErrProductNotFound, model.ErrProductAlreadyExists),
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	entity := toProductEntity(p)
	entity.ID = 0
	if err := r.store.Create(ctx, entity); err != nil {
		return nil, err
	}
	return toProductModel(entity), nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*model.Product, error) {
	e, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductModel(e), nil
}

// GetForUpdate locks the product row for the rest of the unit of work.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	e, err := r.store.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductModel(e), nil
}

func (r *ProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.store.Exists(ctx, id)
}

func (r *ProductRepository) NameAvailable(ctx context.Context, name string, excludeID int64) (bool, error) {
	return r.store.UniqueAmongLive(ctx, "name", name, excludeID)
}

func (r *ProductRepository) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	entity := toProductEntity(p)
	if err := r.store.Save(ctx, entity); err != nil {
		return nil, err
	}
	return toProductModel(entity), nil
}

func (r *ProductRepository) UpdateCount(ctx context.Context, id int64, count int64) error {
	return r.store.Updates(ctx, id, map[string]any{"count": count})
}

func (r *ProductRepository) SoftDelete(ctx context.Context, id int64) (*model.Product, error) {
	e, err := r.store.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductModel(e), nil
}

func (r *ProductRepository) List(ctx context.Context, p model.PageRequest) ([]*model.Product, int64, error) {
	rows, total, err := r.store.Page(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return toProductModels(rows), total, nil
}

// ListLowStock returns live products holding at most threshold units,
// scarcest first.
func (r *ProductRepository) ListLowStock(ctx context.Context, threshold int64) ([]*model.Product, error) {
	rows, err := r.store.FindAll(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("count <= ?", threshold).Order("count ASC")
	})
	if err != nil {
		return nil, err
	}
	return toProductModels(rows), nil
}
