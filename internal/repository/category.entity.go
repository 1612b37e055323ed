package repository

import (
	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
)

type CategoryEntity struct {
	pg.Model
	Name        string `gorm:"column:name;size:255;not null;uniqueIndex:idx_categories_name_live,where:deleted = false"`
	OrderValue  int64  `gorm:"column:order_value;not null"`
	Description string `gorm:"column:description;type:text"`
}

func (CategoryEntity) TableName() string {
	return "categories"
}

func toCategoryEntity(m *model.Category) *CategoryEntity {
	return &CategoryEntity{
		Model:       pg.Model{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Name:        m.Name,
		OrderValue:  m.OrderValue,
		Description: m.Description,
	}
}

func toCategoryModel(e *CategoryEntity) *model.Category {
	return &model.Category{
		ID:          e.ID,
		Name:        e.Name,
		OrderValue:  e.OrderValue,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toCategoryModels(entities []*CategoryEntity) []*model.Category {
	models := make([]*model.Category, len(entities))
	for i, e := range entities {
		models[i] = toCategoryModel(e)
	}
	return models
}
