package types

import "time"

// ArticleCategory is a column articles are grouped under.
type ArticleCategory struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Article represents a published blog post.
type Article struct {
	// ID is the unique identifier of the article.
	ID int `json:"id" db:"id"`

	// AuthorID references the user who published the article.
	AuthorID int `json:"author_id" db:"author_id"`

	// AuthorName is the author's username, populated on reads.
	AuthorName string `json:"author_name,omitempty" db:"-"`

	// CategoryID references the category the article is filed under.
	CategoryID int `json:"category_id" db:"category_id"`

	// CoverKey is the object-storage key of the article's header image.
	CoverKey string `json:"cover_key" db:"cover_key"`

	// Title is the article headline.
	Title string `json:"title" db:"title"`

	// Tags is a short free-text tag line.
	Tags string `json:"tags" db:"tags"`

	// Summary is the abstract shown in listings.
	Summary string `json:"summary" db:"summary"`

	// Content is the article body.
	Content string `json:"content" db:"content"`

	// TotalViews counts detail-page reads.
	TotalViews int `json:"total_views" db:"total_views"`

	// CommentsCount counts comments posted on the article.
	CommentsCount int `json:"comments_count" db:"comments_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
