// Package catalog provides the product store backing the assistant's search.
package catalog

// Product is the catalog row used inside the pipeline, including the fields
// the context assembler needs (description, stock) that are never sent to
// clients.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Color       string  `json:"color"`
	Image       string  `json:"image"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Quantity    int     `json:"quantity"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
}

// Summary is the client-safe projection of a product.
type Summary struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       int64   `json:"price"`
	Image       string  `json:"image"`
	Slug        string  `json:"slug"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}

// Summarize projects a product list into its client-safe shape.
func Summarize(products []Product) []Summary {
	out := make([]Summary, 0, len(products))
	for _, p := range products {
		out = append(out, Summary{
			ID:          p.ID,
			Title:       p.Title,
			Price:       p.Price,
			Image:       p.Image,
			Slug:        p.Slug,
			Rating:      p.Rating,
			ReviewCount: p.ReviewCount,
		})
	}
	return out
}
