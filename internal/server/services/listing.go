package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
)

// ErrTooManyImages is returned when a stored list would exceed the limit.
var ErrTooManyImages = fmt.Errorf("%w: too many images", common.ErrValidation)

// ListingService reads and replaces the ordered image list of a listing.
// A listing is created on first write and belongs to the seller who wrote it.
type ListingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	maxImages   int
	logger      logging.Logger
}

func NewListingService(db *sql.DB, m repomanager.RepositoryManager, maxImages int, logger logging.Logger) *ListingService {
	return &ListingService{
		db:          db,
		repomanager: m,
		maxImages:   maxImages,
		logger:      logger.With("module", "listing_service"),
	}
}

// Images returns the stored list. A listing that does not exist yet has an
// empty list.
func (s *ListingService) Images(ctx context.Context, sellerID, listingID string) (*models.Listing, error) {
	if err := validateListingID(listingID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Listings(s.db)

	owner, err := repo.GetSellerID(ctx, listingID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &models.Listing{ID: listingID, SellerID: sellerID, Images: []string{}}, nil
		}
		return nil, err
	}
	if owner != sellerID {
		return nil, common.ErrForbidden
	}

	images, err := repo.ListImages(ctx, listingID)
	if err != nil {
		return nil, err
	}

	return &models.Listing{ID: listingID, SellerID: owner, Images: images}, nil
}

// ReplaceImages stores images as the listing's new list in one transaction.
func (s *ListingService) ReplaceImages(ctx context.Context, sellerID, listingID string, images []string) error {
	if err := validateListingID(listingID); err != nil {
		return err
	}
	if len(images) > s.maxImages {
		return fmt.Errorf("%w: %d given, at most %d allowed", ErrTooManyImages, len(images), s.maxImages)
	}
	for i, loc := range images {
		if strings.TrimSpace(loc) == "" {
			return fmt.Errorf("%w: image %d is empty", common.ErrValidation, i)
		}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Listings(tx)

		owner, err := repo.Claim(ctx, listingID, sellerID)
		if err != nil {
			return err
		}
		if owner != sellerID {
			return common.ErrForbidden
		}

		return repo.ReplaceImages(ctx, listingID, images)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "listing images saved", "listing", listingID, "seller", sellerID, "count", len(images))
	return nil
}

func validateListingID(id string) error {
	if strings.TrimSpace(id) == "" || len(id) > 128 {
		return fmt.Errorf("%w: bad listing id", common.ErrValidation)
	}
	return nil
}
