package repository

import (
	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
)

type ProductEntity struct {
	pg.Model
	Name       string `gorm:"column:name;size:255;not null;uniqueIndex:idx_products_name_live,where:deleted = false"`
	Count      int64  `gorm:"column:count;not null;check:chk_products_count,count >= 0"`
	CategoryID int64  `gorm:"column:category_id;not null;index"`
}

func (ProductEntity) TableName() string {
	return "products"
}

func toProductEntity(m *model.Product) *ProductEntity {
	return &ProductEntity{
		Model:      pg.Model{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Name:       m.Name,
		Count:      m.Count,
		CategoryID: m.CategoryID,
	}
}

func toProductModel(e *ProductEntity) *model.Product {
	return &model.Product{
		ID:         e.ID,
		Name:       e.Name,
		Count:      e.Count,
		CategoryID: e.CategoryID,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toProductModels(entities []*ProductEntity) []*model.Product {
	models := make([]*model.Product, len(entities))
	for i, e := range entities {
		models[i] = toProductModel(e)
	}
	return models
}
