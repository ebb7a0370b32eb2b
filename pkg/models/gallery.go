package models

// GalleryItem is one displayable image of a gallery. Values are copied,
// never shared, so an item held elsewhere is unaffected by catalog reloads.
type GalleryItem struct {
	Src         string  `json:"src"` // public path, /static/<gallery>/<filename>
	Alt         string  `json:"alt"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// CartItem is a snapshot of a GalleryItem taken when it was added to a cart.
type CartItem = GalleryItem

// MetadataEntry holds the display overrides of one gallery_items row.
// Nil fields were NULL in the store.
type MetadataEntry struct {
	Name        string   `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
}
