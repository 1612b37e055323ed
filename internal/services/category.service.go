package services

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/ledger"
	"github.com/nimasrn/purchase-ledger/internal/model"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) (*model.Category, error)
	Get(ctx context.Context, id int64) (*model.Category, error)
	Update(ctx context.Context, c *model.Category) (*model.Category, error)
	SoftDelete(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context, p model.PageRequest) ([]*model.Category, int64, error)
}

type CategoryService struct {
	uow   UnitOfWork
	repo  CategoryRepository
	guard *ledger.Guard
}

func NewCategoryService(uow UnitOfWork, repo CategoryRepository, guard *ledger.Guard) *CategoryService {
	return &CategoryService{uow: uow, repo: repo, guard: guard}
}

func (s *CategoryService) List(ctx context.Context, p model.PageRequest) (*model.Page[model.Category], error) {
	categories, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return model.NewPage(categories, total, p), nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*model.Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, req model.CategoryCreateRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *model.Category
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		if err := s.guard.RequireUniqueName(ctx, ledger.KindCategory, 0, req.Name, model.ErrCategoryAlreadyExists); err != nil {
			return err
		}
		c, err := s.repo.Create(ctx, &model.Category{
			Name:        req.Name,
			OrderValue:  req.OrderValue,
			Description: req.Description,
		})
		created = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, req model.CategoryUpdateRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *model.Category
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		c, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.Name != nil && *req.Name != c.Name {
			if err := s.guard.RequireUniqueName(ctx, ledger.KindCategory, id, *req.Name, model.ErrCategoryAlreadyExists); err != nil {
				return err
			}
			c.Name = *req.Name
		}
		if req.OrderValue != nil {
			c.OrderValue = *req.OrderValue
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		updated, err = s.repo.Update(ctx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) (*model.Category, error) {
	return s.repo.SoftDelete(ctx, id)
}
