package repository

import (
	"context"
	"fmt"

	"github.com/hibikineko/airona-cult/internal/model"
)

// GalleryRepository handles community gallery entries.
type GalleryRepository struct {
	q Querier
}

// NewGalleryRepository creates a new GalleryRepository instance.
func NewGalleryRepository(q Querier) *GalleryRepository {
	return &GalleryRepository{q: q}
}

// Insert adds a gallery image. The caller supplies the UUID key so the URL
// can be constructed before the row exists.
func (r *GalleryRepository) Insert(ctx context.Context, id, title, imageURL, uploaderID string) (*model.GalleryImage, error) {
	const query = `
		INSERT INTO gallery_images (id, title, image_url, uploader_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, title, image_url, uploader_id, created_at
	`

	var img model.GalleryImage
	err := r.q.QueryRow(ctx, query, id, title, imageURL, uploaderID).Scan(
		&img.ID, &img.Title, &img.ImageURL, &img.UploaderID, &img.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert gallery image: %w", err)
	}
	return &img, nil
}

// List returns a page of gallery images, newest first, plus the total count
// for pagination.
func (r *GalleryRepository) List(ctx context.Context, limit, offset int) ([]model.GalleryImage, int, error) {
	const countQuery = `SELECT COUNT(*) FROM gallery_images`

	var total int
	if err := r.q.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count gallery images: %w", err)
	}

	const query = `
		SELECT id, title, image_url, uploader_id, created_at
		FROM gallery_images
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list gallery images: %w", err)
	}
	defer rows.Close()

	var images []model.GalleryImage
	for rows.Next() {
		var img model.GalleryImage
		err := rows.Scan(&img.ID, &img.Title, &img.ImageURL, &img.UploaderID, &img.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan gallery image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating gallery images: %w", err)
	}

	return images, total, nil
}

// Delete removes a gallery image.
// Returns ErrImageNotFound if the image does not exist.
func (r *GalleryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM gallery_images WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete gallery image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}
