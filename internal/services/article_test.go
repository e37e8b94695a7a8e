package services

import (
	"context"
	"testing"

	"github.com/lanblog/apiserver/internal/store"
	"github.com/lanblog/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArticleRepo struct {
	articles map[int]types.Article
	nextID   int
}

func newFakeArticleRepo(articles ...types.Article) *fakeArticleRepo {
	repo := &fakeArticleRepo{articles: make(map[int]types.Article), nextID: 1}
	for _, article := range articles {
		repo.articles[article.ID] = article
		if article.ID >= repo.nextID {
			repo.nextID = article.ID + 1
		}
	}
	return repo
}

func (r *fakeArticleRepo) ListByCategory(_ context.Context, categoryID, offset, limit int) ([]types.Article, int, error) {
	var matched []types.Article
	for _, article := range r.articles {
		if article.CategoryID == categoryID {
			matched = append(matched, article)
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeArticleRepo) ListHot(_ context.Context, limit int) ([]types.Article, error) {
	var hot []types.Article
	for _, article := range r.articles {
		hot = append(hot, article)
		if len(hot) == limit {
			break
		}
	}
	return hot, nil
}

func (r *fakeArticleRepo) Get(_ context.Context, id int) (types.Article, error) {
	article, ok := r.articles[id]
	if !ok {
		return types.Article{}, store.ErrNotFound
	}
	return article, nil
}

func (r *fakeArticleRepo) Create(_ context.Context, article types.Article) (types.Article, error) {
	article.ID = r.nextID
	r.nextID++
	r.articles[article.ID] = article
	return article, nil
}

func (r *fakeArticleRepo) IncrementViews(_ context.Context, id int) error {
	article, ok := r.articles[id]
	if !ok {
		return store.ErrNotFound
	}
	article.TotalViews++
	r.articles[id] = article
	return nil
}

func (r *fakeArticleRepo) IncrementComments(_ context.Context, id int) error {
	article, ok := r.articles[id]
	if !ok {
		return store.ErrNotFound
	}
	article.CommentsCount++
	r.articles[id] = article
	return nil
}

type fakeCategoryRepo struct {
	categories map[int]types.ArticleCategory
}

func newFakeCategoryRepo(names ...string) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: make(map[int]types.ArticleCategory)}
	for i, name := range names {
		repo.categories[i+1] = types.ArticleCategory{ID: i + 1, Title: name}
	}
	return repo
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]types.ArticleCategory, error) {
	var all []types.ArticleCategory
	for _, category := range r.categories {
		all = append(all, category)
	}
	return all, nil
}

func (r *fakeCategoryRepo) Get(_ context.Context, id int) (types.ArticleCategory, error) {
	category, ok := r.categories[id]
	if !ok {
		return types.ArticleCategory{}, store.ErrNotFound
	}
	return category, nil
}

type fakeCommentRepo struct {
	comments []types.Comment
}

func (r *fakeCommentRepo) ListByArticle(_ context.Context, articleID, offset, limit int) ([]types.Comment, int, error) {
	var matched []types.Comment
	for _, comment := range r.comments {
		if comment.ArticleID == articleID {
			matched = append(matched, comment)
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeCommentRepo) Create(_ context.Context, comment types.Comment) (types.Comment, error) {
	comment.ID = len(r.comments) + 1
	r.comments = append(r.comments, comment)
	return comment, nil
}

func TestArticleDetailCountsView(t *testing.T) {
	articles := newFakeArticleRepo(types.Article{ID: 1, CategoryID: 1, Title: "first", TotalViews: 3})
	svc := NewArticleService(articles, newFakeCategoryRepo("tech"))

	article, hot, err := svc.Detail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, article.TotalViews)
	assert.Len(t, hot, 1)

	// The increment persisted.
	stored, err := articles.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.TotalViews)
}

func TestArticleDetailUnknownArticle(t *testing.T) {
	svc := NewArticleService(newFakeArticleRepo(), newFakeCategoryRepo("tech"))

	_, _, err := svc.Detail(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestArticleCreateValidatesCategory(t *testing.T) {
	articles := newFakeArticleRepo()
	svc := NewArticleService(articles, newFakeCategoryRepo("tech"))

	_, err := svc.Create(context.Background(), types.Article{CategoryID: 99, Title: "nope"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	created, err := svc.Create(context.Background(), types.Article{CategoryID: 1, Title: "ok"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}

func TestArticleListClampsLimit(t *testing.T) {
	articles := newFakeArticleRepo()
	for i := 0; i < 150; i++ {
		_, err := articles.Create(context.Background(), types.Article{CategoryID: 1})
		require.NoError(t, err)
	}
	svc := NewArticleService(articles, newFakeCategoryRepo("tech"))

	page, total, err := svc.ListByCategory(context.Background(), 1, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 150, total)
	assert.Len(t, page, 100)

	page, _, err = svc.ListByCategory(context.Background(), 1, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page, 10)
}

func TestCommentCreateBumpsCounter(t *testing.T) {
	articles := newFakeArticleRepo(types.Article{ID: 1, CategoryID: 1})
	comments := &fakeCommentRepo{}
	svc := NewCommentService(comments, articles)

	created, err := svc.Create(context.Background(), types.Comment{ArticleID: 1, UserID: 7, Content: "nice"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	article, err := articles.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, article.CommentsCount)
}

func TestCommentCreateUnknownArticle(t *testing.T) {
	svc := NewCommentService(&fakeCommentRepo{}, newFakeArticleRepo())

	_, err := svc.Create(context.Background(), types.Comment{ArticleID: 9, Content: "nope"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
