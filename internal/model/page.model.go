package model

// PageRequest is a zero based page index and a page size.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Offset() int {
	if p.Page < 0 {
		return 0
	}
	return p.Page * p.Size
}

type Page[T any] struct {
	Items []*T  `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

func NewPage[T any](items []*T, total int64, p PageRequest) *Page[T] {
	if items == nil {
		items = []*T{}
	}
	return &Page[T]{Items: items, Total: total, Page: p.Page, Size: p.Size}
}
