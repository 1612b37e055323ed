package model

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	OrderValue  int64     `json:"orderValue"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdDate"`
	UpdatedAt   time.Time `json:"modifiedDate"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name"`
	OrderValue  int64  `json:"orderValue"`
	Description string `json:"description"`
}

func (r CategoryCreateRequest) Validate() error {
	if r.Name == "" {
		return ErrInvalidRequest.WithMessage("name is required")
	}
	return nil
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	OrderValue  *int64  `json:"orderValue"`
	Description *string `json:"description"`
}

func (r CategoryUpdateRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ErrInvalidRequest.WithMessage("name must not be empty")
	}
	return nil
}
