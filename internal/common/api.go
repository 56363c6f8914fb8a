package common

import (
	"fmt"
	"net/url"
)

// ImageList is the wire body of the listing images endpoints.
type ImageList struct {
	Images []string `json:"images"`
}

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListingImagesPath returns the images endpoint of one listing.
func ListingImagesPath(listingID string) string {
	return fmt.Sprintf("/api/listings/%s/images", url.PathEscape(listingID))
}
