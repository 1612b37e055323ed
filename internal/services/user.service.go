package services

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/ledger"
	"github.com/nimasrn/purchase-ledger/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
	SoftDelete(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, p model.PageRequest) ([]*model.User, int64, error)
}

type UserService struct {
	uow   UnitOfWork
	repo  UserRepository
	guard *ledger.Guard
}

func NewUserService(uow UnitOfWork, repo UserRepository, guard *ledger.Guard) *UserService {
	return &UserService{uow: uow, repo: repo, guard: guard}
}

func (s *UserService) List(ctx context.Context, p model.PageRequest) (*model.Page[model.User], error) {
	users, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return model.NewPage(users, total, p), nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a user. Usernames are unique among live users only, so
// the name of a deleted user can be taken again.
func (s *UserService) Create(ctx context.Context, req model.UserCreateRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *model.User
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		if err := s.guard.RequireUniqueName(ctx, ledger.KindUser, 0, req.Username, model.ErrUserAlreadyExists); err != nil {
			return err
		}
		u, err := s.repo.Create(ctx, &model.User{
			Fullname: req.Fullname,
			Username: req.Username,
			Balance:  req.Balance,
		})
		created = u
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id int64, req model.UserUpdateRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *model.User
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		u, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.Username != nil && *req.Username != u.Username {
			if err := s.guard.RequireUniqueName(ctx, ledger.KindUser, id, *req.Username, model.ErrUserAlreadyExists); err != nil {
				return err
			}
			u.Username = *req.Username
		}
		if req.Fullname != nil {
			u.Fullname = *req.Fullname
		}
		if req.Balance != nil {
			u.Balance = *req.Balance
		}
		updated, err = s.repo.Update(ctx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.SoftDelete(ctx, id)
}
