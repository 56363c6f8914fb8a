package listings

import "context"

type Repository interface {
	// Claim creates the listing for sellerID unless it exists and returns
	// the seller that owns it.
	Claim(ctx context.Context, listingID, sellerID string) (string, error)
	GetSellerID(ctx context.Context, listingID string) (string, error)
	ListImages(ctx context.Context, listingID string) ([]string, error)
	ReplaceImages(ctx context.Context, listingID string, locators []string) error
}
