package domain

// Product is a catalog product as returned by the upstream catalog API.
// Prices are in the catalog's source currency (USD).
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Thumbnail   string  `json:"thumbnail"`
	Description string  `json:"description"`
}

// ProductPage is one page of catalog products together with the upstream
// paging window.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}
