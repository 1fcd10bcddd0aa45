package models

// PageParams is offset pagination as computed by the request layer.
type PageParams struct {
	Skip int
	Take int
}

// Limit maps a non-positive Take to "no limit".
func (p PageParams) Limit() int {
	if p.Take <= 0 {
		return -1
	}
	return p.Take
}

func (p PageParams) Offset() int {
	if p.Skip < 0 {
		return 0
	}
	return p.Skip
}

// Page is one page of rows plus the unpaged count for the same filter.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

// All lists every model so the schema can be migrated in one call.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Favorite{},
	}
}
