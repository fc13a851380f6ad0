package catalog

// Snapshot is the immutable, fully-resolved in-memory view of the entity store
// that one engine run operates on. Every aggregator reads the same snapshot, so
// all reports of a run describe the same instant of the transactional data.
//
// Lookup maps are built once here and reused by every aggregator, turning the
// order-item/item/category/brand correlation into O(1) per line item.
type Snapshot struct {
	Orders     []Order
	Items      []Item
	Categories []Category
	Brands     []Brand
	Batches    []Batch

	itemsByID      map[int64]*Item
	categoriesByID map[int64]*Category
	brandsByID     map[int64]*Brand
}

// NewSnapshot builds a snapshot with its id indexes. The caller hands over
// ownership of the slices; they must not be mutated afterwards.
func NewSnapshot(orders []Order, items []Item, categories []Category, brands []Brand, batches []Batch) *Snapshot {
	s := &Snapshot{
		Orders:     orders,
		Items:      items,
		Categories: categories,
		Brands:     brands,
		Batches:    batches,

		itemsByID:      make(map[int64]*Item, len(items)),
		categoriesByID: make(map[int64]*Category, len(categories)),
		brandsByID:     make(map[int64]*Brand, len(brands)),
	}
	for i := range items {
		s.itemsByID[items[i].ID] = &items[i]
	}
	for i := range categories {
		s.categoriesByID[categories[i].ID] = &categories[i]
	}
	for i := range brands {
		s.brandsByID[brands[i].ID] = &brands[i]
	}
	return s
}

// ItemByID resolves an item reference from a line item.
func (s *Snapshot) ItemByID(id int64) (*Item, bool) {
	it, ok := s.itemsByID[id]
	return it, ok
}

// CategoryByID resolves a category reference from an item.
func (s *Snapshot) CategoryByID(id int64) (*Category, bool) {
	c, ok := s.categoriesByID[id]
	return c, ok
}

// BrandByID resolves a brand reference from an item.
func (s *Snapshot) BrandByID(id int64) (*Brand, bool) {
	b, ok := s.brandsByID[id]
	return b, ok
}

// BrandName returns the brand name for an item, or "Unknown" when the
// reference is absent or dangling.
func (s *Snapshot) BrandName(item *Item) string {
	if b, ok := s.brandsByID[item.BrandID]; ok {
		return b.Name
	}
	return "Unknown"
}

// CategoryName returns the category name for an item, or "Unknown" when the
// reference is absent or dangling.
func (s *Snapshot) CategoryName(item *Item) string {
	if c, ok := s.categoriesByID[item.CategoryID]; ok {
		return c.Name
	}
	return "Unknown"
}
