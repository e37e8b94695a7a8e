package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lanblog/apiserver/types"
)

// ArticleRepository handles persistence for articles.
type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// ListByCategory returns one page of a category's articles, newest
// first, together with the category's total article count.
func (r *ArticleRepository) ListByCategory(ctx context.Context, categoryID, offset, limit int) ([]types.Article, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 10
	}

	const countQuery = `SELECT COUNT(1) FROM articles WHERE category_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, categoryID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT a.id, a.author_id, u.username, a.category_id, a.cover_key, a.title, a.tags,
			a.summary, a.content, a.total_views, a.comments_count, a.created_at, a.updated_at
		FROM articles a
		JOIN users u ON u.id = a.author_id
		WHERE a.category_id = $1
		ORDER BY a.created_at DESC
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, categoryID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := make([]types.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

// ListHot returns the most viewed articles.
func (r *ArticleRepository) ListHot(ctx context.Context, limit int) ([]types.Article, error) {
	if limit < 1 {
		limit = 10
	}

	const query = `
		SELECT a.id, a.author_id, u.username, a.category_id, a.cover_key, a.title, a.tags,
			a.summary, a.content, a.total_views, a.comments_count, a.created_at, a.updated_at
		FROM articles a
		JOIN users u ON u.id = a.author_id
		ORDER BY a.total_views DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]types.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *ArticleRepository) Get(ctx context.Context, id int) (types.Article, error) {
	const query = `
		SELECT a.id, a.author_id, u.username, a.category_id, a.cover_key, a.title, a.tags,
			a.summary, a.content, a.total_views, a.comments_count, a.created_at, a.updated_at
		FROM articles a
		JOIN users u ON u.id = a.author_id
		WHERE a.id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var article types.Article
	err := row.Scan(
		&article.ID,
		&article.AuthorID,
		&article.AuthorName,
		&article.CategoryID,
		&article.CoverKey,
		&article.Title,
		&article.Tags,
		&article.Summary,
		&article.Content,
		&article.TotalViews,
		&article.CommentsCount,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Article{}, ErrNotFound
		}
		return types.Article{}, err
	}
	return article, nil
}

func (r *ArticleRepository) Create(ctx context.Context, article types.Article) (types.Article, error) {
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now

	const query = `
		INSERT INTO articles (author_id, category_id, cover_key, title, tags, summary, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		article.AuthorID,
		article.CategoryID,
		article.CoverKey,
		article.Title,
		article.Tags,
		article.Summary,
		article.Content,
		article.CreatedAt,
		article.UpdatedAt,
	).Scan(&article.ID); err != nil {
		return types.Article{}, err
	}
	return article, nil
}

// IncrementViews bumps the view counter by one.
func (r *ArticleRepository) IncrementViews(ctx context.Context, id int) error {
	const query = `UPDATE articles SET total_views = total_views + 1 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementComments bumps the comment counter by one.
func (r *ArticleRepository) IncrementComments(ctx context.Context, id int) error {
	const query = `UPDATE articles SET comments_count = comments_count + 1 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanArticle(rows *sql.Rows) (types.Article, error) {
	var article types.Article
	err := rows.Scan(
		&article.ID,
		&article.AuthorID,
		&article.AuthorName,
		&article.CategoryID,
		&article.CoverKey,
		&article.Title,
		&article.Tags,
		&article.Summary,
		&article.Content,
		&article.TotalViews,
		&article.CommentsCount,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	return article, err
}
