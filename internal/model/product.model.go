package model

import "time"

type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Count        int64     `json:"count"`
	CategoryID   int64     `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	CreatedAt    time.Time `json:"createdDate"`
	UpdatedAt    time.Time `json:"modifiedDate"`
}

type ProductCreateRequest struct {
	Name       string `json:"name"`
	Count      int64  `json:"count"`
	CategoryID int64  `json:"categoryId"`
}

func (r ProductCreateRequest) Validate() error {
	if r.Name == "" {
		return ErrInvalidRequest.WithMessage("name is required")
	}
	if r.Count < 0 {
		return ErrInvalidRequest.WithMessage("count must not be negative")
	}
	if r.CategoryID == 0 {
		return ErrInvalidRequest.WithMessage("categoryId is required")
	}
	return nil
}

type ProductUpdateRequest struct {
	Name  *string `json:"name"`
	Count *int64  `json:"count"`
}

func (r ProductUpdateRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ErrInvalidRequest.WithMessage("name must not be empty")
	}
	if r.Count != nil && *r.Count < 0 {
		return ErrInvalidRequest.WithMessage("count must not be negative")
	}
	return nil
}
