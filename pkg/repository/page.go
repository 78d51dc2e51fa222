package repository

import (
	"context"
	"fmt"

	"github.com/JaimeStill/scrivener/pkg/pagination"
)

// PageQuery produces the count and page statements for one filtered
// listing. *query.Builder satisfies it.
type PageQuery interface {
	BuildCount() (string, []any)
	BuildPage(page, pageSize int) (string, []any)
}

// QueryPage counts the rows matched by pq and then loads the requested page.
// The request must already be normalized.
func QueryPage[T any](
	ctx context.Context,
	q Querier,
	pq PageQuery,
	page pagination.PageRequest,
	scan ScanFunc[T],
) (*pagination.PageResult[T], error) {
	countSQL, countArgs := pq.BuildCount()

	var total int
	if err := q.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	pageSQL, pageArgs := pq.BuildPage(page.Page, page.PageSize)
	items, err := QueryMany(ctx, q, pageSQL, pageArgs, scan)
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}
