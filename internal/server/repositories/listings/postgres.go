// Package listings stores listing ownership and the ordered image list of
// each listing in PostgreSQL.
package listings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Claim(ctx context.Context, listingID, sellerID string) (string, error) {
	query :=
		`INSERT INTO listings (id, seller_id)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET updated_at = now()
		 RETURNING seller_id
		 `

	var owner string
	if err := r.db.QueryRowContext(ctx, query, listingID, sellerID).Scan(&owner); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	return owner, nil
}

func (r *PostgresRepository) GetSellerID(ctx context.Context, listingID string) (string, error) {
	query :=
		`SELECT seller_id FROM listings
		 WHERE id = $1
		 `

	var owner string
	err := r.db.QueryRowContext(ctx, query, listingID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return owner, nil
}

func (r *PostgresRepository) ListImages(ctx context.Context, listingID string) ([]string, error) {
	query :=
		`SELECT locator FROM listing_images
		 WHERE listing_id = $1
		 ORDER BY position
		 `

	rows, err := r.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	images := make([]string, 0)
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		images = append(images, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return images, nil
}

// ReplaceImages overwrites the whole list. Callers run it inside a transaction
// together with the ownership check.
func (r *PostgresRepository) ReplaceImages(ctx context.Context, listingID string, locators []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM listing_images WHERE listing_id = $1`, listingID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	query :=
		`INSERT INTO listing_images (listing_id, position, locator)
		 VALUES ($1, $2, $3)
		 `

	for i, loc := range locators {
		if _, err := r.db.ExecContext(ctx, query, listingID, i, loc); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	return nil
}
