package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lanblog/apiserver/internal/services"
	"github.com/lanblog/apiserver/internal/storage"
	"github.com/lanblog/apiserver/internal/store"
	"github.com/lanblog/apiserver/types"
)

const (
	maxMultipartMemory = 10 << 20
	maxImageBytes      = 5 << 20
)

// ArticleHandler provides listing, detail, publishing, and comments.
type ArticleHandler struct {
	articleService *services.ArticleService
	commentService *services.CommentService
	media          *storage.Storage
}

func NewArticleHandler(articleService *services.ArticleService, commentService *services.CommentService, media *storage.Storage) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		commentService: commentService,
		media:          media,
	}
}

// ArticleRouter registers article routes on the given router.
func ArticleRouter(
	r chi.Router,
	articleService *services.ArticleService,
	commentService *services.CommentService,
	media *storage.Storage,
) {
	handler := NewArticleHandler(articleService, commentService, media)

	r.Get("/categories", handler.ListCategories)
	r.Get("/articles", handler.ListArticles)
	r.With(RequireUser).Post("/articles", handler.CreateArticle)
	r.Route("/articles/{articleID}", func(r chi.Router) {
		r.Get("/", handler.GetArticle)
		r.With(RequireUser).Post("/comments", handler.CreateComment)
	})
}

func (h *ArticleHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.articleService.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// ListArticles returns one page of a category's articles.
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	categoryID := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("cat_id")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid cat_id")
			return
		}
		categoryID = parsed
	}

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.articleService.Category(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch category")
		return
	}

	items, total, err := h.articleService.ListByCategory(r.Context(), categoryID, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}

	pages := totalPages(total, limit)
	if page > pages {
		writeError(w, http.StatusNotFound, "empty page")
		return
	}

	writeJSON(w, http.StatusOK, ArticleListResponse{
		Category:   category,
		Items:      items,
		Page:       page,
		PageSize:   limit,
		Total:      total,
		TotalPages: pages,
	})
}

// GetArticle returns the article detail: the article with its view
// counted, the sitewide hot list, and one page of comments.
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseArticleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	article, hot, err := h.articleService.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch article")
		return
	}

	comments, totalComments, err := h.commentService.ListByArticle(r.Context(), id, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch comments")
		return
	}

	pages := totalPages(totalComments, limit)
	if page > pages {
		writeError(w, http.StatusNotFound, "empty page")
		return
	}

	writeJSON(w, http.StatusOK, ArticleDetailResponse{
		Article:       article,
		HotArticles:   hot,
		Comments:      comments,
		TotalComments: totalComments,
		Page:          page,
		PageSize:      limit,
		TotalPages:    pages,
	})
}

// CreateArticle publishes an article from a multipart form with a
// header image.
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	summary := strings.TrimSpace(r.FormValue("summary"))
	content := r.FormValue("content")
	tags := strings.TrimSpace(r.FormValue("tags"))
	categoryID, err := strconv.Atoi(strings.TrimSpace(r.FormValue("category")))
	if err != nil || categoryID < 1 {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	if title == "" || summary == "" || content == "" {
		writeError(w, http.StatusBadRequest, "title, summary and content are required")
		return
	}

	coverKey, err := h.storeImage(r, "avatar", storage.ArticleCoverKey(time.Now()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if coverKey == "" {
		writeError(w, http.StatusBadRequest, "cover image is required")
		return
	}

	article, err := h.articleService.Create(r.Context(), types.Article{
		AuthorID:   session.UserID,
		CategoryID: categoryID,
		CoverKey:   coverKey,
		Title:      title,
		Tags:       tags,
		Summary:    summary,
		Content:    content,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to publish, try again later")
		return
	}

	writeJSON(w, http.StatusCreated, article)
}

// CreateComment posts a comment on the article.
func (h *ArticleHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	id, err := parseArticleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	content := strings.TrimSpace(r.PostFormValue("content"))
	if content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	comment, err := h.commentService.Create(r.Context(), types.Comment{
		ArticleID: id,
		UserID:    session.UserID,
		Content:   content,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to post comment")
		return
	}
	comment.Username = session.Username

	writeJSON(w, http.StatusCreated, comment)
}

// storeImage uploads the named multipart file to object storage under
// the given key. It returns "" when the field is absent.
func (h *ArticleHandler) storeImage(r *http.Request, field, key string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", errors.New("failed to read image")
	}
	defer file.Close()

	return key, putImage(r, h.media, file, header, key)
}

func putImage(r *http.Request, media *storage.Storage, file multipart.File, header *multipart.FileHeader, key string) error {
	if header.Size > maxImageBytes {
		return errors.New("image too large")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		buf := make([]byte, 512)
		n, _ := io.ReadFull(file, buf)
		contentType = http.DetectContentType(buf[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return errors.New("failed to read image")
		}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return errors.New("file is not an image")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return errors.New("failed to read image")
	}
	if int64(len(data)) > maxImageBytes {
		return errors.New("image too large")
	}

	return media.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType)
}

// ArticleListResponse is the paginated category listing payload.
type ArticleListResponse struct {
	Category   types.ArticleCategory `json:"category"`
	Items      []types.Article       `json:"items"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"total_pages"`
}

// ArticleDetailResponse is the article detail payload.
type ArticleDetailResponse struct {
	Article       types.Article   `json:"article"`
	HotArticles   []types.Article `json:"hot_articles"`
	Comments      []types.Comment `json:"comments"`
	TotalComments int             `json:"total_comments"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
	TotalPages    int             `json:"total_pages"`
}

func parseArticleID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "articleID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid article id")
	}
	return id, nil
}
