package models

// Listing is a storefront listing as far as its image gallery is concerned.
// Images are object locators in display order; index 0 is the primary image.
type Listing struct {
	ID       string
	SellerID string
	Images   []string
}
