package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/hibikineko/airona-cult/internal/model"
	"github.com/hibikineko/airona-cult/internal/repository"
)

// Validation errors for gallery uploads.
var (
	ErrTitleRequired    = errors.New("image title is required")
	ErrImageURLRequired = errors.New("image url is required")
)

// GalleryService handles the community gallery. Image bytes live in external
// object storage; this service only tracks metadata.
type GalleryService struct {
	gallery *repository.GalleryRepository
}

// NewGalleryService creates a new GalleryService instance.
func NewGalleryService(gallery *repository.GalleryRepository) *GalleryService {
	return &GalleryService{gallery: gallery}
}

// GalleryPage is one page of gallery images with pagination metadata.
type GalleryPage struct {
	Images   []model.GalleryImage `json:"images"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

// List returns one page of the gallery, newest first.
func (s *GalleryService) List(ctx context.Context, page, pageSize int) (*GalleryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 60 {
		pageSize = 20
	}

	images, total, err := s.gallery.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &GalleryPage{
		Images:   images,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Add registers an uploaded image under a fresh UUID key.
func (s *GalleryService) Add(ctx context.Context, title, imageURL, uploaderID string) (*model.GalleryImage, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(imageURL) == "" {
		return nil, ErrImageURLRequired
	}

	return s.gallery.Insert(ctx, uuid.NewString(), title, imageURL, uploaderID)
}

// Remove deletes a gallery image.
func (s *GalleryService) Remove(ctx context.Context, id string) error {
	return s.gallery.Delete(ctx, id)
}
