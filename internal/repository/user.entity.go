package repository

import (
	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"github.com/shopspring/decimal"
)

type UserEntity struct {
	pg.Model
	Fullname string          `gorm:"column:fullname;size:255;not null"`
	Username string          `gorm:"column:username;size:64;not null;uniqueIndex:idx_users_username_live,where:deleted = false"`
	Balance  decimal.Decimal `gorm:"column:balance;type:numeric(20,2);not null;check:chk_users_balance,balance >= 0"`
}

func (UserEntity) TableName() string {
	return "users"
}

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	return &UserEntity{
		Model:    pg.Model{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Fullname: m.Fullname,
		Username: m.Username,
		Balance:  m.Balance,
	}
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:        e.ID,
		Fullname:  e.Fullname,
		Username:  e.Username,
		Balance:   e.Balance,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toUserModels(entities []*UserEntity) []*model.User {
	models := make([]*model.User, len(entities))
	for i, e := range entities {
		models[i] = toUserModel(e)
	}
	return models
}
