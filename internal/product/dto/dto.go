package dto

type ProductFilters struct {
	SearchQuery string // substring of name or sku
	Category    string
	LowStock    bool // quantity at or under twice the minimum
	SortBy      string // name, price, quantity, created_at
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}
