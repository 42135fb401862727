package repositories_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}, &models.Order{}, &models.Payment{}, &models.LandingPageMedia{}))
	return db
}

func newProduct(stock int) *models.Product {
	return &models.Product{
		Name:  "Wild Honey",
		Brand: "Harvest",
		Sizes: models.ProductSizes{{Weight: 500, Price: decimal.RequireFromString("50.00")}},
		Stock: stock,
	}
}

// stores returns the GORM and in-memory implementations side by side.
func stores(t *testing.T) map[string]repositories.TxRepositories {
	db := openTestDB(t)
	return map[string]repositories.TxRepositories{
		"gorm": {
			Orders:   repositories.NewGORMOrderRepository(db),
			Products: repositories.NewGORMProductRepository(db),
			Payments: repositories.NewGORMPaymentRepository(db),
		},
		"memory": {
			Orders:   repositories.NewMemoryOrderRepository(),
			Products: repositories.NewMemoryProductRepository(),
			Payments: repositories.NewMemoryPaymentRepository(),
		},
	}
}

func TestProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	for name, repos := range stores(t) {
		t.Run(name, func(t *testing.T) {
			p := newProduct(10)
			require.NoError(t, repos.Products.Create(ctx, p))
			assert.NotEmpty(t, p.ID)

			got, err := repos.Products.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, "Wild Honey", got.Name)
			require.Len(t, got.Sizes, 1)
			assert.True(t, got.Sizes[0].Price.Equal(decimal.RequireFromString("50")))

			got.Name = "Raw Honey"
			got.Stock = 3
			require.NoError(t, repos.Products.Update(ctx, got))
			got, err = repos.Products.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, "Raw Honey", got.Name)
			assert.Equal(t, 3, got.Stock)

			list, total, err := repos.Products.List(ctx, repositories.ProductFilter{Search: "raw"})
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)
			assert.Len(t, list, 1)

			require.NoError(t, repos.Products.Delete(ctx, p.ID))
			_, err = repos.Products.GetByID(ctx, p.ID)
			assert.ErrorIs(t, err, apperror.ErrNotFound)
			assert.ErrorIs(t, repos.Products.Delete(ctx, p.ID), apperror.ErrNotFound)
		})
	}
}

func TestProductRepository_DecrementStockFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	for name, repos := range stores(t) {
		t.Run(name, func(t *testing.T) {
			p := newProduct(10)
			require.NoError(t, repos.Products.Create(ctx, p))

			ok, err := repos.Products.CheckAvailable(ctx, p.ID, 10)
			require.NoError(t, err)
			assert.True(t, ok)

			stock, err := repos.Products.DecrementStock(ctx, p.ID, 3)
			require.NoError(t, err)
			assert.Equal(t, 7, stock)

			stock, err = repos.Products.DecrementStock(ctx, p.ID, 50)
			require.NoError(t, err)
			assert.Equal(t, 0, stock)

			ok, err = repos.Products.CheckAvailable(ctx, p.ID, 1)
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = repos.Products.DecrementStock(ctx, "missing", 1)
			assert.ErrorIs(t, err, apperror.ErrNotFound)
		})
	}
}

func TestOrderRepository_ConfirmPaymentOnlyOnce(t *testing.T) {
	ctx := context.Background()
	for name, repos := range stores(t) {
		t.Run(name, func(t *testing.T) {
			order := &models.Order{UserID: "u1", ProductID: "p1", SizeSelected: "500", Quantity: 1,
				AmountPaid: decimal.RequireFromString("50")}
			require.NoError(t, repos.Orders.Create(ctx, order))
			assert.Equal(t, models.OrderPending, order.OrderStatus)
			assert.Equal(t, models.PaymentPending, order.PaymentStatus)

			var wg sync.WaitGroup
			var mu sync.Mutex
			confirmed := 0
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := repos.Orders.ConfirmPayment(ctx, order.ID)
					assert.NoError(t, err)
					if ok {
						mu.Lock()
						confirmed++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, 1, confirmed)

			got, err := repos.Orders.GetByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, models.PaymentCompleted, got.PaymentStatus)
			assert.Equal(t, models.OrderConfirmed, got.OrderStatus)

			changed, err := repos.Orders.MarkPaymentFailed(ctx, order.ID)
			require.NoError(t, err)
			assert.False(t, changed)
		})
	}
}

func TestOrderRepository_ConfirmAfterFailureAndCancel(t *testing.T) {
	ctx := context.Background()
	for name, repos := range stores(t) {
		t.Run(name, func(t *testing.T) {
			failed := &models.Order{UserID: "u1", ProductID: "p1", Quantity: 1}
			require.NoError(t, repos.Orders.Create(ctx, failed))
			changed, err := repos.Orders.MarkPaymentFailed(ctx, failed.ID)
			require.NoError(t, err)
			assert.True(t, changed)
			ok, err := repos.Orders.ConfirmPayment(ctx, failed.ID)
			require.NoError(t, err)
			assert.True(t, ok)

			cancelled := &models.Order{UserID: "u1", ProductID: "p1", Quantity: 1}
			require.NoError(t, repos.Orders.Create(ctx, cancelled))
			moved, err := repos.Orders.TransitionStatus(ctx, cancelled.ID, models.OrderPending, models.OrderCancelled)
			require.NoError(t, err)
			assert.True(t, moved)
			ok, err = repos.Orders.ConfirmPayment(ctx, cancelled.ID)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestOrderRepository_ListAndOwnership(t *testing.T) {
	ctx := context.Background()
	for name, repos := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				require.NoError(t, repos.Orders.Create(ctx, &models.Order{UserID: "alice", ProductID: "p", Quantity: 1}))
			}
			bob := &models.Order{UserID: "bob", ProductID: "p", Quantity: 1}
			require.NoError(t, repos.Orders.Create(ctx, bob))

			orders, total, err := repos.Orders.List(ctx, repositories.OrderFilter{UserID: "alice", Page: repositories.Page{Page: 1, Limit: 2}})
			require.NoError(t, err)
			assert.EqualValues(t, 3, total)
			assert.Len(t, orders, 2)

			n, err := repos.Orders.Count(ctx, repositories.OrderFilter{OrderStatus: models.OrderPending})
			require.NoError(t, err)
			assert.EqualValues(t, 4, n)

			_, err = repos.Orders.GetByIDForUser(ctx, bob.ID, "alice")
			assert.ErrorIs(t, err, apperror.ErrNotFound)
			got, err := repos.Orders.GetByIDForUser(ctx, bob.ID, "bob")
			require.NoError(t, err)
			assert.Equal(t, bob.ID, got.ID)
		})
	}
}

func TestPaymentRepository(t *testing.T) {
	ctx := context.Background()
	for name, repos := range stores(t) {
		t.Run(name, func(t *testing.T) {
			first := &models.Payment{PaymentID: "pay_1", OrderID: "o1", UserID: "u1", Amount: decimal.RequireFromString("357.50")}
			require.NoError(t, repos.Payments.Create(ctx, first))
			second := &models.Payment{PaymentID: "pay_2", OrderID: "o1", UserID: "u1", Amount: decimal.RequireFromString("357.50")}
			require.NoError(t, repos.Payments.Create(ctx, second))

			got, err := repos.Payments.GetByPaymentID(ctx, "pay_1")
			require.NoError(t, err)
			assert.Equal(t, models.PaymentRecordPending, got.Status)

			latest, err := repos.Payments.LatestForOrder(ctx, "o1")
			require.NoError(t, err)
			assert.Equal(t, "pay_2", latest.PaymentID)

			require.NoError(t, repos.Payments.UpdateStatus(ctx, first.ID, models.PaymentRecordSuccess))
			has, err := repos.Payments.HasSuccess(ctx, "o1", second.ID)
			require.NoError(t, err)
			assert.True(t, has)
			has, err = repos.Payments.HasSuccess(ctx, "o1", first.ID)
			require.NoError(t, err)
			assert.False(t, has)

			revenue, err := repos.Payments.Revenue(ctx)
			require.NoError(t, err)
			assert.True(t, revenue.Equal(decimal.RequireFromString("357.5")), revenue.String())

			_, err = repos.Payments.GetByPaymentID(ctx, "pay_missing")
			assert.ErrorIs(t, err, apperror.ErrNotFound)
			_, err = repos.Payments.LatestForOrder(ctx, "o2")
			assert.ErrorIs(t, err, apperror.ErrNotFound)
		})
	}
}

func TestGORMUnitOfWork_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	products := repositories.NewGORMProductRepository(db)
	p := newProduct(10)
	require.NoError(t, products.Create(ctx, p))

	uow := repositories.NewGORMUnitOfWork(db)
	err := uow.Do(ctx, func(repos repositories.TxRepositories) error {
		if _, err := repos.Products.DecrementStock(ctx, p.ID, 4); err != nil {
			return err
		}
		return apperror.Conflictf("abort")
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
}

func TestGORMUserAndCartRepositories(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	carts := repositories.NewGORMCartRepository(db)

	u := &models.User{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, users.Create(ctx, u))
	assert.Equal(t, models.RoleUser, u.Role)

	got, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	got.Role = models.RoleAdmin
	require.NoError(t, users.Update(ctx, got))

	n, err := users.Count(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	item := &models.CartItem{UserID: u.ID, ProductID: "p1", Size: "500", Quantity: 2}
	require.NoError(t, carts.AddItem(ctx, item))
	found, err := carts.FindItem(ctx, u.ID, "p1", "500")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	require.NoError(t, carts.UpdateQuantity(ctx, u.ID, item.ID, 5))
	assert.ErrorIs(t, carts.UpdateQuantity(ctx, "someone-else", item.ID, 5), apperror.ErrNotFound)

	items, err := carts.Items(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)

	require.NoError(t, carts.RemoveProduct(ctx, u.ID, "p1", "500"))
	items, err = carts.Items(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.ErrorIs(t, carts.RemoveItem(ctx, u.ID, item.ID), apperror.ErrNotFound)
}

func TestGORMMediaRepository_SingleDocument(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMMediaRepository(openTestDB(t))

	media, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, media.HeroImages)
	assert.NotNil(t, media.HeroImages)

	media.LogoURL = "https://cdn.test/logo.svg"
	media.VideoTestimonials = models.VideoTestimonials{{ID: 1, Name: "Sara", VideoURL: "https://cdn.test/sara.mp4"}}
	require.NoError(t, repo.Save(ctx, media))

	// Get does not overwrite an existing document.
	again, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/logo.svg", again.LogoURL)
	require.Len(t, again.VideoTestimonials, 1)
	assert.Equal(t, "Sara", again.VideoTestimonials[0].Name)
	assert.Equal(t, models.LandingPageMediaID, again.ID)
}
