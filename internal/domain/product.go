package domain

// Product is the full catalog record for a pharmaceutical product,
// as served by the catalog data service.
type Product struct {
	ID           int     `json:"id"`
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	BrandName    string  `json:"brandName"`
	GenericName  string  `json:"genericName"`
	Manufacturer string  `json:"manufacturer"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stock"`
	Since        string  `json:"since"`
	Updated      string  `json:"updated"`

	// Image is the constructed asset URL. Only populated on recognition
	// responses, never stored by the catalog.
	Image string `json:"image,omitempty"`
}

// ProductNameEntry pairs a catalog product name with its identifier.
// The recognition flow matches against names and resolves the winner
// to a full record afterwards.
type ProductNameEntry struct {
	ProductName string `json:"productName"`
	ProductID   string `json:"productId"`
}
