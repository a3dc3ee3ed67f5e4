// Package menu contains the read-only menu model consumed from the
// restaurant gateway.
package menu

// Category groups menu items for display.
type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"name"`
	Sort int    `json:"sort_order"`
}

// Item is a dish on the menu.
type Item struct {
	ID          int64   `json:"item_id"`
	CategoryID  int64   `json:"category_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	Available   bool    `json:"available"`
	Weight      string  `json:"weight,omitempty"`
}
