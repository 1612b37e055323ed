package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const colDeleted = "deleted"

// liveStore is the soft-delete aware access path shared by every ledger
// table. Rows flagged deleted are invisible to every method except
// GetIncludingDeleted. Errors are translated into the store's catalog errors.
type liveStore[E any] struct {
	db        *pg.DB
	notFound  *model.Error
	duplicate *model.Error
}

func newLiveStore[E any](db *pg.DB, notFound, duplicate *model.Error) liveStore[E] {
	return liveStore[E]{db: db, notFound: notFound, duplicate: duplicate}
}

func (s liveStore[E]) live(q *gorm.DB) *gorm.DB {
	return q.Model(new(E)).Where(clause.Eq{Column: clause.Column{Name: colDeleted}, Value: false})
}

func (s liveStore[E]) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return s.duplicate
	}
	return err
}

func (s liveStore[E]) Get(ctx context.Context, id int64) (*E, error) {
	e := new(E)
	err := s.live(s.db.Read(ctx)).Where("id = ?", id).First(e).Error
	if err != nil {
		return nil, s.translate(err)
	}
	return e, nil
}

// GetForUpdate reads a live row and holds a write lock on it until the
// surrounding unit of work ends.
func (s liveStore[E]) GetForUpdate(ctx context.Context, id int64) (*E, error) {
	e := new(E)
	err := s.live(s.db.Write(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(e).Error
	if err != nil {
		return nil, s.translate(err)
	}
	return e, nil
}

// GetIncludingDeleted resolves ids of soft-deleted rows for audit reads.
func (s liveStore[E]) GetIncludingDeleted(ctx context.Context, id int64) (*E, error) {
	e := new(E)
	if err := s.db.Read(ctx).Where("id = ?", id).First(e).Error; err != nil {
		return nil, s.translate(err)
	}
	return e, nil
}

func (s liveStore[E]) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := s.live(s.db.Read(ctx)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s liveStore[E]) FindByUnique(ctx context.Context, field string, value any) (*E, error) {
	e := new(E)
	err := s.live(s.db.Read(ctx)).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		First(e).Error
	if err != nil {
		return nil, s.translate(err)
	}
	return e, nil
}

// UniqueAmongLive reports whether no live row other than excludeID holds
// value in field. Pass excludeID 0 when checking a row that does not exist yet.
func (s liveStore[E]) UniqueAmongLive(ctx context.Context, field string, value any, excludeID int64) (bool, error) {
	var n int64
	err := s.live(s.db.Read(ctx)).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		Where("id <> ?", excludeID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Save inserts e when its id is zero and updates every column otherwise.
func (s liveStore[E]) Save(ctx context.Context, e *E) error {
	return s.translate(s.db.Write(ctx).Save(e).Error)
}

func (s liveStore[E]) Create(ctx context.Context, e *E) error {
	return s.translate(s.db.Write(ctx).Create(e).Error)
}

// Updates writes the given columns of a live row.
func (s liveStore[E]) Updates(ctx context.Context, id int64, columns map[string]any) error {
	res := s.live(s.db.Write(ctx)).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return s.translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return s.notFound
	}
	return nil
}

func (s liveStore[E]) SoftDelete(ctx context.Context, id int64) (*E, error) {
	res := s.live(s.db.Write(ctx)).Where("id = ?", id).Update(colDeleted, true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.notFound
	}
	return s.GetIncludingDeleted(ctx, id)
}

// SoftDeleteWhere flags every live row matching field = value and returns
// how many rows changed.
func (s liveStore[E]) SoftDeleteWhere(ctx context.Context, field string, value any) (int64, error) {
	res := s.live(s.db.Write(ctx)).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		Update(colDeleted, true)
	return res.RowsAffected, res.Error
}

func (s liveStore[E]) Page(ctx context.Context, p model.PageRequest, scopes ...func(*gorm.DB) *gorm.DB) ([]*E, int64, error) {
	q := s.live(s.db.Read(ctx)).Scopes(scopes...)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*E
	err := q.Order("id ASC").Limit(p.Size).Offset(p.Offset()).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindAll returns every live row matching the scopes, ordered by id.
func (s liveStore[E]) FindAll(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) ([]*E, error) {
	var rows []*E
	if err := s.live(s.db.Read(ctx)).Scopes(scopes...).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumInt sums targetField over live rows where filterField = filterValue.
// An empty match sums to zero.
func (s liveStore[E]) SumInt(ctx context.Context, filterField string, filterValue any, targetField string) (int64, error) {
	var total int64
	err := s.live(s.db.Read(ctx)).
		Select("COALESCE(SUM(?), 0)", clause.Column{Name: targetField}).
		Where(clause.Eq{Column: clause.Column{Name: filterField}, Value: filterValue}).
		Row().Scan(&total)
	return total, err
}

func (s liveStore[E]) SumDecimal(ctx context.Context, filterField string, filterValue any, targetField string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.live(s.db.Read(ctx)).
		Select("SUM(?)", clause.Column{Name: targetField}).
		Where(clause.Eq{Column: clause.Column{Name: filterField}, Value: filterValue}).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func where(field string, value any) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(clause.Eq{Column: clause.Column{Name: field}, Value: value})
	}
}
