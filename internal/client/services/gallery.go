package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/coordinator"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/ephemeral"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/gallery"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/policy"
)

var (
	ErrBatchInProgress = errors.New("another gallery operation is in progress")
	ErrNoListing       = errors.New("no listing is open")
	ErrUnsaved         = errors.New("gallery contains local-only images")
)

var readFile = os.ReadFile

// ImageStore reads and replaces the persisted image list of a listing.
type ImageStore interface {
	ListImages(ctx context.Context, listingID string) ([]string, error)
	SaveImages(ctx context.Context, listingID string, images []string) error
}

// BatchSubmitter turns selected files into gallery references.
type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, candidates []gallery.Candidate, current gallery.List, maxAllowed int) (gallery.List, coordinator.BatchReport, error)
}

// Status is a snapshot of the open gallery.
type Status struct {
	ListingID string
	Images    gallery.List
	MaxImages int
}

// Remaining is the number of free slots.
func (s Status) Remaining() int {
	return max(s.MaxImages-len(s.Images), 0)
}

// GalleryService owns the image list of one listing at a time. Mutations never
// overlap: a call made while another is running fails with ErrBatchInProgress.
type GalleryService struct {
	store     ImageStore
	submitter BatchSubmitter
	previews  ephemeral.Store
	maxImages int
	logger    logging.Logger

	mu        sync.Mutex
	listingID string
	list      gallery.List
}

func NewGalleryService(store ImageStore, submitter BatchSubmitter, previews ephemeral.Store, maxImages int, logger logging.Logger) *GalleryService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &GalleryService{
		store:     store,
		submitter: submitter,
		previews:  previews,
		maxImages: maxImages,
		logger:    logger.With("module", "gallery"),
		list:      gallery.List{},
	}
}

func (s *GalleryService) lock() (func(), error) {
	if !s.mu.TryLock() {
		return nil, ErrBatchInProgress
	}
	return s.mu.Unlock, nil
}

// Open loads listingID from the server. Unsaved previews of the previously
// open listing are released.
func (s *GalleryService) Open(ctx context.Context, listingID string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if listingID == "" {
		return errors.New("listing id is required")
	}

	images, err := s.store.ListImages(ctx, listingID)
	if err != nil {
		return fmt.Errorf("load listing %s: %w", listingID, err)
	}

	s.releaseAll(ctx, s.list)
	s.listingID = listingID
	s.list = gallery.FromLocators(images)
	s.logger.Info(ctx, "listing opened", "listing", listingID, "images", len(images))
	return nil
}

// Add reads the files at paths and submits them as one batch. A file that
// cannot be read aborts the call before anything is uploaded.
func (s *GalleryService) Add(ctx context.Context, paths []string) (coordinator.BatchReport, error) {
	unlock, err := s.lock()
	if err != nil {
		return coordinator.BatchReport{}, err
	}
	defer unlock()

	if s.listingID == "" {
		return coordinator.BatchReport{}, ErrNoListing
	}

	candidates := make([]gallery.Candidate, 0, len(paths))
	for _, p := range paths {
		data, err := readFile(p)
		if err != nil {
			return coordinator.BatchReport{}, fmt.Errorf("read %s: %w", p, err)
		}
		name := filepath.Base(p)
		candidates = append(candidates, gallery.Candidate{
			Name:      name,
			MediaType: policy.DetectMediaType(name, data),
			Data:      data,
		})
	}

	updated, report, err := s.submitter.SubmitBatch(ctx, candidates, s.list, s.maxImages)
	s.list = updated
	return report, err
}

// Remove drops the image at index and releases its preview if it had one.
func (s *GalleryService) Remove(ctx context.Context, index int) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	updated, err := gallery.RemoveAt(s.list, index)
	if err != nil {
		return err
	}
	s.releaseAll(ctx, s.list[index:index+1])
	s.list = updated
	return nil
}

// Move reorders the gallery. Index 0 is the primary image.
func (s *GalleryService) Move(ctx context.Context, from, to int) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	updated, err := gallery.MoveTo(s.list, from, to)
	if err != nil {
		return err
	}
	s.list = updated
	return nil
}

// Save persists the gallery. With local-only entries present it fails with
// ErrUnsaved unless force is set, in which case those entries are dropped and
// their previews released. It returns the number of entries dropped.
func (s *GalleryService) Save(ctx context.Context, force bool) (int, error) {
	unlock, err := s.lock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	if s.listingID == "" {
		return 0, ErrNoListing
	}

	dropped := s.list.EphemeralCount()
	if dropped > 0 && !force {
		return 0, fmt.Errorf("%d of %d: %w", dropped, len(s.list), ErrUnsaved)
	}

	kept := s.list.WithoutEphemeral()
	if err := s.store.SaveImages(ctx, s.listingID, kept.Locators()); err != nil {
		return 0, fmt.Errorf("save listing %s: %w", s.listingID, err)
	}

	s.releaseAll(ctx, s.list)
	s.list = kept
	s.logger.Info(ctx, "listing saved", "listing", s.listingID, "images", len(kept), "dropped", dropped)
	return dropped, nil
}

// Status returns a copy of the current state.
func (s *GalleryService) Status() (Status, error) {
	unlock, err := s.lock()
	if err != nil {
		return Status{}, err
	}
	defer unlock()

	return Status{ListingID: s.listingID, Images: s.list.Clone(), MaxImages: s.maxImages}, nil
}

// Close releases every outstanding preview.
func (s *GalleryService) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseAll(ctx, s.list)
	s.list = s.list.WithoutEphemeral()
}

func (s *GalleryService) releaseAll(ctx context.Context, l gallery.List) {
	if s.previews == nil {
		return
	}
	for _, r := range l {
		if !r.Ephemeral {
			continue
		}
		if err := s.previews.Release(ctx, r.Locator); err != nil && !errors.Is(err, ephemeral.ErrNotFound) {
			s.logger.Warn(ctx, "release preview failed", "locator", r.Locator, "error", err)
		}
	}
}
