package domain

// Product is catalog metadata resolved from a scanned code. Name is
// localized by the language passed to the lookup.
type Product struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Code    string  `json:"code,omitempty"`
	Barcode string  `json:"barcode,omitempty"`
	Price   float64 `json:"price,omitempty"`
	UoMName string  `json:"uom,omitempty"`
}
