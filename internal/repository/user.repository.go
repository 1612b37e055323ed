package repository

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"github.com/shopspring/decimal"
)

type UserRepository struct {
	*pg.DB
	store liveStore[UserEntity]
}

func NewUserRepository(db *pg.DB) *UserRepository {
	return &UserRepository{
		DB:    db,
		store: newLiveStore[UserEntity](db, model.ErrUserNotFound, model.ErrUserAlreadyExists),
	}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	entity := toUserEntity(u)
	entity.ID = 0
	if err := r.store.Create(ctx, entity); err != nil {
		return nil, err
	}
	return toUserModel(entity), nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	e, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserModel(e), nil
}

// GetForUpdate locks the user row for the rest of the unit of work.
func (r *UserRepository) GetForUpdate(ctx context.Context, id int64) (*model.User, error) {
	e, err := r.store.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserModel(e), nil
}

func (r *UserRepository) GetIncludingDeleted(ctx context.Context, id int64) (*model.User, error) {
	e, err := r.store.GetIncludingDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserModel(e), nil
}

func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.store.Exists(ctx, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	e, err := r.store.FindByUnique(ctx, "username", username)
	if err != nil {
		return nil, err
	}
	return toUserModel(e), nil
}

func (r *UserRepository) NameAvailable(ctx context.Context, username string, excludeID int64) (bool, error) {
	return r.store.UniqueAmongLive(ctx, "username", username, excludeID)
}

func (r *UserRepository) Update(ctx context.Context, u *model.User) (*model.User, error) {
	entity := toUserEntity(u)
	if err := r.store.Save(ctx, entity); err != nil {
		return nil, err
	}
	return toUserModel(entity), nil
}

func (r *UserRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	return r.store.Updates(ctx, id, map[string]any{"balance": balance})
}

func (r *UserRepository) SoftDelete(ctx context.Context, id int64) (*model.User, error) {
	e, err := r.store.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserModel(e), nil
}

func (r *UserRepository) List(ctx context.Context, p model.PageRequest) ([]*model.User, int64, error) {
	rows, total, err := r.store.Page(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return toUserModels(rows), total, nil
}
