package util

// Pages describes one page of a paginated listing.
type Pages struct {
	PageCount        int32
	TotalItemCount   int32
	ItemCountPerPage int32
	Current          int32
	First            int32
	Last             int32
}

// NewPages computes page boundaries for a total row count.
func NewPages(total int64, perPage int32, current int32) *Pages {
	if perPage <= 0 {
		perPage = 1
	}

	pageCount := int32((total + int64(perPage) - 1) / int64(perPage))

	if current < 1 {
		current = 1
	}

	if pageCount > 0 && current > pageCount {
		current = pageCount
	}

	return &Pages{
		PageCount:        pageCount,
		TotalItemCount:   int32(total),
		ItemCountPerPage: perPage,
		Current:          current,
		First:            1,
		Last:             pageCount,
	}
}
