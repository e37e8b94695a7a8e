package types

import "time"

// Comment is a reader comment attached to an article.
type Comment struct {
	ID        int       `json:"id" db:"id"`
	ArticleID int       `json:"article_id" db:"article_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Username  string    `json:"username,omitempty" db:"-"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
