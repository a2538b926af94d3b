package domain

// CartLine is a product in the cart with its quantity. A line with
// quantity <= 0 never exists; it is removed instead of stored as zero.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}
