package services

import (
	"context"

	"github.com/lanblog/apiserver/types"
)

const hotArticleCount = 10

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	ListByCategory(ctx context.Context, categoryID, offset, limit int) ([]types.Article, int, error)
	ListHot(ctx context.Context, limit int) ([]types.Article, error)
	Get(ctx context.Context, id int) (types.Article, error)
	Create(ctx context.Context, article types.Article) (types.Article, error)
	IncrementViews(ctx context.Context, id int) error
	IncrementComments(ctx context.Context, id int) error
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]types.ArticleCategory, error)
	Get(ctx context.Context, id int) (types.ArticleCategory, error)
}

// ArticleService encapsulates article use-cases.
type ArticleService struct {
	articles   ArticleRepository
	categories CategoryRepository
}

func NewArticleService(articles ArticleRepository, categories CategoryRepository) *ArticleService {
	return &ArticleService{articles: articles, categories: categories}
}

func (s *ArticleService) Categories(ctx context.Context) ([]types.ArticleCategory, error) {
	return s.categories.List(ctx)
}

func (s *ArticleService) Category(ctx context.Context, id int) (types.ArticleCategory, error) {
	return s.categories.Get(ctx, id)
}

func (s *ArticleService) ListByCategory(ctx context.Context, categoryID, offset, limit int) ([]types.Article, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.articles.ListByCategory(ctx, categoryID, offset, limit)
}

// Detail loads an article for display, counting the read and
// returning the sitewide most-viewed articles alongside.
func (s *ArticleService) Detail(ctx context.Context, id int) (types.Article, []types.Article, error) {
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return types.Article{}, nil, err
	}

	if err := s.articles.IncrementViews(ctx, id); err != nil {
		return types.Article{}, nil, err
	}
	article.TotalViews++

	hot, err := s.articles.ListHot(ctx, hotArticleCount)
	if err != nil {
		return types.Article{}, nil, err
	}

	return article, hot, nil
}

// Create publishes an article after confirming the category exists.
func (s *ArticleService) Create(ctx context.Context, article types.Article) (types.Article, error) {
	if _, err := s.categories.Get(ctx, article.CategoryID); err != nil {
		return types.Article{}, err
	}
	return s.articles.Create(ctx, article)
}
