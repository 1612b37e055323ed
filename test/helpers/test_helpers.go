package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/internal/repository"
	"github.com/nimasrn/purchase-ledger/internal/services"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"github.com/nimasrn/purchase-ledger/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func SetupTestDB(t *testing.T) *pg.DB {
	return repository.NewTestDB(t)
}

// SetupTestRedis starts a miniredis server that is closed with the test.
func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.NewFromClient(client, "test:")
}

type Catalog struct {
	User     *model.User
	Category *model.Category
	Product  *model.Product
}

// SeedCatalog creates one user with balance and one product with stock.
func SeedCatalog(t *testing.T, svc *services.Services, balance, stock int64) Catalog {
	t.Helper()
	ctx := context.Background()

	user, err := svc.Users.Create(ctx, model.UserCreateRequest{
		Fullname: "Test User",
		Username: "test-user",
		Balance:  decimal.NewFromInt(balance),
	})
	require.NoError(t, err)

	category, err := svc.Categories.Create(ctx, model.CategoryCreateRequest{Name: "Test Category", OrderValue: 1})
	require.NoError(t, err)

	product, err := svc.Products.Create(ctx, model.ProductCreateRequest{
		Name:       "Test Product",
		Count:      stock,
		CategoryID: category.ID,
	})
	require.NoError(t, err)

	return Catalog{User: user, Category: category, Product: product}
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
