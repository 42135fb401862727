package services

import (
	"context"
	"log"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/repositories"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardRecentOrders = 10
	lowStockThreshold     = 10
	lowStockLimit         = 10
)

// AdminService serves the admin console.
type AdminService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	payments repositories.PaymentRepository
}

func NewAdminService(
	users repositories.UserRepository,
	products repositories.ProductRepository,
	orders repositories.OrderRepository,
	payments repositories.PaymentRepository,
) *AdminService {
	return &AdminService{users: users, products: products, orders: orders, payments: payments}
}

// DashboardStats are the headline numbers of the store.
type DashboardStats struct {
	TotalUsers    int64           `json:"total_users"`
	TotalProducts int64           `json:"total_products"`
	TotalOrders   int64           `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// Dashboard is the admin landing view.
type Dashboard struct {
	Stats            DashboardStats   `json:"stats"`
	RecentOrders     []models.Order   `json:"recent_orders"`
	LowStockProducts []models.Product `json:"low_stock_products"`
}

// Dashboard gathers the stats concurrently.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Stats.TotalUsers, err = s.users.Count(ctx, models.RoleUser)
		return err
	})
	g.Go(func() (err error) {
		d.Stats.TotalProducts, err = s.products.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Stats.TotalOrders, err = s.orders.Count(ctx, repositories.OrderFilter{})
		return err
	})
	g.Go(func() (err error) {
		d.Stats.TotalRevenue, err = s.payments.Revenue(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.RecentOrders, _, err = s.orders.List(ctx, repositories.OrderFilter{Page: repositories.Page{Page: 1, Limit: dashboardRecentOrders}})
		return err
	})
	g.Go(func() (err error) {
		d.LowStockProducts, err = s.products.LowStock(ctx, lowStockThreshold, lowStockLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.RecentOrders == nil {
		d.RecentOrders = []models.Order{}
	}
	if d.LowStockProducts == nil {
		d.LowStockProducts = []models.Product{}
	}
	return &d, nil
}

func (s *AdminService) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]models.User, int64, error) {
	if filter.Role != "" && filter.Role != models.RoleUser && filter.Role != models.RoleAdmin {
		return nil, 0, apperror.Validationf("Valid role (user/admin) is required")
	}
	return s.users.List(ctx, filter)
}

// UpdateUserRole changes a user's role. Administrators cannot demote themselves.
func (s *AdminService) UpdateUserRole(ctx context.Context, actorID, userID, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperror.Validationf("Valid role (user/admin) is required")
	}
	if actorID == userID && role != models.RoleAdmin {
		return nil, apperror.Validationf("You cannot remove your own admin privileges")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFoundf("User not found")
		}
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("User %s role changed to %s by %s", userID, role, actorID)
	return user, nil
}

func (s *AdminService) ListPayments(ctx context.Context, filter repositories.PaymentFilter) ([]models.Payment, int64, error) {
	switch filter.Status {
	case "", models.PaymentRecordPending, models.PaymentRecordSuccess, models.PaymentRecordFailed:
	default:
		return nil, 0, apperror.Validationf("invalid payment status: %s", filter.Status)
	}
	return s.payments.List(ctx, filter)
}
