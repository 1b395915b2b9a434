package repository

import "context"

// Pagination holds pagination parameters for listing entities.
type Pagination struct {
	PageNo   int32
	PageSize int32
}

// Offset converts the 1-based page number into a row offset, clamping
// nonsensical inputs to the first page.
func (p *Pagination) Offset() int32 {
	if p.PageNo <= 1 {
		return 0
	}
	return (p.PageNo - 1) * p.PageSize
}

// FilterOrder carries raw filter and order_by expressions supplied by callers.
type FilterOrder struct {
	Filter  string
	OrderBy string
}

func (fo *FilterOrder) GetFilter() string { return fo.Filter }

func (fo *FilterOrder) GetOrderBy() string { return fo.OrderBy }

// TxRunner groups a sequence of repository calls into one atomic unit of work.
// The callback's context carries the open transaction; repositories issued
// through it share the transaction and either all commit or all roll back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
