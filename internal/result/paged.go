package result

// PagedResult is a Result over a slice plus paging metadata.
type PagedResult[T any] struct {
	Result[[]T]
	Page     int
	PageSize int
	Total    int64
}

func PagedSuccess[T any](items []T, page, pageSize int, total int64) PagedResult[T] {
	return PagedResult[T]{
		Result:   Success(items),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
}

func PagedFailure[T any](code, message string) PagedResult[T] {
	return PagedResult[T]{Result: Failure[[]T](code, message)}
}

// TotalPages derives the page count from Total and PageSize.
func (p PagedResult[T]) TotalPages() int {
	if p.PageSize < 1 || p.Total < 1 {
		return 0
	}
	pages := p.Total / int64(p.PageSize)
	if p.Total%int64(p.PageSize) != 0 {
		pages++
	}
	return int(pages)
}
