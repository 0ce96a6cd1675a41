package domain

// CartEntry is a product copied into the cart. Entries are copies, not
// references, so later catalog changes never affect items already added.
// There is no quantity field: adding the same product twice yields two
// entries.
type CartEntry struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Thumbnail   string  `json:"thumbnail"`
	Description string  `json:"description"`
}

// EntryFromProduct copies a catalog product into a cart entry.
func EntryFromProduct(p Product) CartEntry {
	return CartEntry{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Thumbnail:   p.Thumbnail,
		Description: p.Description,
	}
}

// CartSnapshot is the entire persisted unit of a cart: the insertion-ordered
// entries plus the transient notification text. It is saved as a whole on
// every mutation and restored as a whole when the cart is next opened.
type CartSnapshot struct {
	Entries      []CartEntry `json:"entries"`
	Notification string      `json:"notification,omitempty"`
}

// Clone returns a deep copy of the snapshot so callers can hold it without
// racing against further mutations.
func (s CartSnapshot) Clone() CartSnapshot {
	out := CartSnapshot{Notification: s.Notification}
	if len(s.Entries) > 0 {
		out.Entries = make([]CartEntry, len(s.Entries))
		copy(out.Entries, s.Entries)
	}
	return out
}
