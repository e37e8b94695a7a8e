package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lanblog/apiserver/types"
)

// CategoryRepository handles persistence for article categories.
type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]types.ArticleCategory, error) {
	const query = `
		SELECT id, title, created_at
		FROM categories
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []types.ArticleCategory
	for rows.Next() {
		var category types.ArticleCategory
		if err := rows.Scan(&category.ID, &category.Title, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id int) (types.ArticleCategory, error) {
	const query = `
		SELECT id, title, created_at
		FROM categories
		WHERE id = $1`
	var category types.ArticleCategory
	err := r.db.QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Title, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ArticleCategory{}, ErrNotFound
		}
		return types.ArticleCategory{}, err
	}
	return category, nil
}
