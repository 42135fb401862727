package repositories

import "context"

const maxPageSize = 100

// Page selects a window of a listing. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalize(defaultLimit int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}

// Offset is the number of rows skipped before the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// window returns the bounds of the page within n items.
func (p Page) window(n int) (int, int) {
	start := p.Offset()
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}

// TxRepositories are the repositories bound to one unit of work.
type TxRepositories struct {
	Orders   OrderRepository
	Products ProductRepository
	Payments PaymentRepository
}

// UnitOfWork runs fn so that all writes made through the given repositories
// become visible together or not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos TxRepositories) error) error
}
