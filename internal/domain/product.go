package domain

// Product is a catalog record as returned by the catalog service. Products
// are never stored locally; they are fetched on demand to validate order
// items and enrich responses.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}
