package services

import (
	"context"

	"github.com/lanblog/apiserver/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	ListByArticle(ctx context.Context, articleID, offset, limit int) ([]types.Comment, int, error)
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
}

// CommentService encapsulates comment use-cases.
type CommentService struct {
	comments CommentRepository
	articles ArticleRepository
}

func NewCommentService(comments CommentRepository, articles ArticleRepository) *CommentService {
	return &CommentService{comments: comments, articles: articles}
}

func (s *CommentService) ListByArticle(ctx context.Context, articleID, offset, limit int) ([]types.Comment, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.comments.ListByArticle(ctx, articleID, offset, limit)
}

// Create posts a comment on an article and bumps the article's
// comment counter. The article must exist.
func (s *CommentService) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	if _, err := s.articles.Get(ctx, comment.ArticleID); err != nil {
		return types.Comment{}, err
	}

	created, err := s.comments.Create(ctx, comment)
	if err != nil {
		return types.Comment{}, err
	}

	if err := s.articles.IncrementComments(ctx, comment.ArticleID); err != nil {
		return types.Comment{}, err
	}

	return created, nil
}
