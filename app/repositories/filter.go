package repositories

// Filter selects products. It is a closed set: every adapter switches over
// the concrete types below and nothing outside this package implements it.
type Filter interface {
	isFilter()
}

// All matches every product.
type All struct{}

// TextMatch is a case-insensitive literal substring match on title or
// description. An empty Term matches everything.
type TextMatch struct {
	Term string
}

// CategoryIn matches products whose category is one of IDs. An empty list
// matches nothing.
type CategoryIn struct {
	IDs []string
}

// InStock matches products with stock > 0.
type InStock struct{}

// And matches products satisfying every member.
type And []Filter

func (All) isFilter()        {}
func (TextMatch) isFilter()  {}
func (CategoryIn) isFilter() {}
func (InStock) isFilter()    {}
func (And) isFilter()        {}

// Sort fields understood by every adapter.
const (
	SortCreatedAt = "createdAt"
	SortStock     = "stock"
)

// Sort orders a product query. Ties always break on _id descending.
type Sort struct {
	Field string
	Desc  bool
}

// Newest is createdAt descending, the default catalog order.
var Newest = Sort{Field: SortCreatedAt, Desc: true}

// ProductQuery is one page of products. Limit <= 0 means no limit.
type ProductQuery struct {
	Filter Filter
	Sort   Sort
	Skip   int
	Limit  int
}

// Search builds the filter for a free-text query.
func Search(term string) Filter {
	if term == "" {
		return All{}
	}
	return TextMatch{Term: term}
}

// filterOrAll treats a nil filter as All.
func filterOrAll(f Filter) Filter {
	if f == nil {
		return All{}
	}
	return f
}
