package services

import (
	"context"

	"github.com/nimasrn/purchase-ledger/internal/ledger"
	"github.com/nimasrn/purchase-ledger/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	Update(ctx context.Context, p *model.Product) (*model.Product, error)
	SoftDelete(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, p model.PageRequest) ([]*model.Product, int64, error)
}

type ProductService struct {
	uow   UnitOfWork
	repo  ProductRepository
	guard *ledger.Guard
}

func NewProductService(uow UnitOfWork, repo ProductRepository, guard *ledger.Guard) *ProductService {
	return &ProductService{uow: uow, repo: repo, guard: guard}
}

func (s *ProductService) List(ctx context.Context, p model.PageRequest) (*model.Page[model.Product], error) {
	products, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return model.NewPage(products, total, p), nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a product to a live category.
func (s *ProductService) Create(ctx context.Context, req model.ProductCreateRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *model.Product
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		if err := s.guard.RequireCategory(ctx, req.CategoryID); err != nil {
			return err
		}
		if err := s.guard.RequireUniqueName(ctx, ledger.KindProduct, 0, req.Name, model.ErrProductAlreadyExists); err != nil {
			return err
		}
		p, err := s.repo.Create(ctx, &model.Product{
			Name:       req.Name,
			Count:      req.Count,
			CategoryID: req.CategoryID,
		})
		created = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, req model.ProductUpdateRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *model.Product
	err := s.uow.WithinTransactionRetry(ctx, func(ctx context.Context) error {
		p, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.Name != nil && *req.Name != p.Name {
			if err := s.guard.RequireUniqueName(ctx, ledger.KindProduct, id, *req.Name, model.ErrProductAlreadyExists); err != nil {
				return err
			}
			p.Name = *req.Name
		}
		if req.Count != nil {
			p.Count = *req.Count
		}
		updated, err = s.repo.Update(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) (*model.Product, error) {
	return s.repo.SoftDelete(ctx, id)
}
