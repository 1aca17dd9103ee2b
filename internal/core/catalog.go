package core

const (
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#808080"
)

// Category is a named, colored classification tag.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Catalog is the static, ordered category list provided at startup.
type Catalog struct {
	items []Category
	byID  map[string]int
}

// NewCatalog builds a catalog; later duplicates of an id are ignored.
func NewCatalog(categories []Category) Catalog {
	c := Catalog{byID: make(map[string]int, len(categories))}
	for _, cat := range categories {
		if _, ok := c.byID[cat.ID]; ok {
			continue
		}
		c.byID[cat.ID] = len(c.items)
		c.items = append(c.items, cat)
	}
	return c
}

// DefaultCatalog returns the seeded categories.
func DefaultCatalog() Catalog {
	return NewCatalog([]Category{
		{ID: "food", Name: "Food", Color: "#FF6384"},
		{ID: "transport", Name: "Transport", Color: "#36A2EB"},
		{ID: "bills", Name: "Bills", Color: "#FFCE56"},
		{ID: "shopping", Name: "Shopping", Color: "#4BC0C0"},
		{ID: "salary", Name: "Salary", Color: "#22C55E"},
		{ID: "savings", Name: "Savings", Color: "#9966FF"},
		{ID: "business", Name: "Business", Color: "#A9A9A9"},
		{ID: "gift", Name: "Gift", Color: "#FF9F40"},
		{ID: "rent", Name: "Rent", Color: "#C9CBCF"},
		{ID: "health", Name: "Health", Color: "#EF4444"},
		{ID: "education", Name: "Education", Color: "#8B5CF6"},
	})
}

// Lookup finds a category by id.
func (c Catalog) Lookup(id string) (Category, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Category{}, false
	}
	return c.items[i], true
}

// Resolve returns the category for id, or the Uncategorized fallback keeping the raw id.
func Resolve(c Catalog, id string) Category {
	if cat, ok := c.Lookup(id); ok {
		return cat
	}
	return Category{ID: id, Name: UncategorizedName, Color: UncategorizedColor}
}

// All returns the catalog in seed order.
func (c Catalog) All() []Category {
	return append([]Category(nil), c.items...)
}

func (c Catalog) Len() int {
	return len(c.items)
}
