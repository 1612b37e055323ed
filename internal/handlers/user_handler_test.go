package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, p model.PageRequest) (*model.Page[model.User], error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.User]), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, req model.UserCreateRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id int64, req model.UserUpdateRequest) (*model.User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func TestUserHandler_List(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc)
		svc.On("List", mock.Anything, model.PageRequest{Page: 0, Size: 10}).
			Return(model.NewPage([]*model.User{{ID: 1, Username: "alice"}}, 1, model.PageRequest{Size: 10}), nil)

		ctx := setupTestContext("GET", "/api/users", nil)
		h.List(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		var page model.Page[model.User]
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &page))
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, "alice", page.Items[0].Username)
		svc.AssertExpectations(t)
	})

	t.Run("size is capped", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc)
		svc.On("List", mock.Anything, model.PageRequest{Page: 2, Size: 50}).
			Return(model.NewPage[model.User](nil, 0, model.PageRequest{Page: 2, Size: 50}), nil)

		ctx := setupTestContext("GET", "/api/users?page=2&size=500", nil)
		h.List(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.JSONEq(t, `{"items":[],"total":0,"page":2,"size":50}`, string(ctx.Response.Body()))
	})

	t.Run("bad page", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc)

		ctx := setupTestContext("GET", "/api/users?page=-1", nil)
		h.List(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestUserHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(r model.UserCreateRequest) bool {
			return r.Username == "alice" && r.Balance.Equal(decimal.NewFromInt(1000))
		})).Return(&model.User{ID: 1, Username: "alice", Balance: decimal.NewFromInt(1000)}, nil)

		ctx := setupTestContext("POST", "/api/users", []byte(`{"fullname":"Alice","username":"alice","balance":1000}`))
		h.Create(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("taken", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, model.ErrUserAlreadyExists)

		ctx := setupTestContext("POST", "/api/users", []byte(`{"fullname":"Alice","username":"alice"}`))
		h.Create(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
		assert.Equal(t, 101, decodeError(t, ctx).Code)
	})

	t.Run("empty body", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc)

		ctx := setupTestContext("POST", "/api/users", nil)
		h.Create(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestUserHandler_ByID(t *testing.T) {
	svc := new(MockUserService)
	h := NewUserHandler(svc)
	svc.On("Get", mock.Anything, int64(5)).Return(nil, model.ErrUserNotFound)
	svc.On("Delete", mock.Anything, int64(6)).Return(&model.User{ID: 6}, nil)
	svc.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(r model.UserUpdateRequest) bool {
		return r.Fullname != nil && *r.Fullname == "New" && r.Username == nil
	})).Return(nil, errors.New("boom"))

	ctx := setupTestContext("GET", "/api/users/5", nil)
	ctx.SetUserValue("id", "5")
	h.Get(ctx)
	assert.Equal(t, 404, ctx.Response.StatusCode())

	ctx = setupTestContext("DELETE", "/api/users/6", nil)
	ctx.SetUserValue("id", "6")
	h.Delete(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())

	ctx = setupTestContext("PUT", "/api/users/7", []byte(`{"fullname":"New"}`))
	ctx.SetUserValue("id", "7")
	h.Update(ctx)
	assert.Equal(t, 500, ctx.Response.StatusCode())

	ctx = setupTestContext("GET", "/api/users/0", nil)
	ctx.SetUserValue("id", "0")
	h.Get(ctx)
	assert.Equal(t, 400, ctx.Response.StatusCode())

	svc.AssertExpectations(t)
}
