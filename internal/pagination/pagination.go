package pagination

const (
	DefaultSize = 10
	MaxSize     = 100
)

type Page[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// Paginate slices items for a 1-based page. Out-of-range arguments are
// clamped; a page past the end yields no items.
func Paginate[T any](items []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	total := len(items)
	pages := (total + size - 1) / size

	out := Page[T]{
		Items:       []T{},
		Page:        page,
		PageSize:    size,
		Total:       total,
		TotalPages:  pages,
		HasPrevious: page > 1,
		HasNext:     page < pages,
	}
	// page is caller input; compare before multiplying so it cannot overflow.
	if page <= pages {
		offset := (page - 1) * size
		end := offset + size
		if end > total {
			end = total
		}
		out.Items = items[offset:end]
	}
	return out
}
