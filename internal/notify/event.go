package notify

import "time"

// ContentEvent describes a post that was saved by the host.
type ContentEvent struct {
	PostID       int64     `json:"post_id"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	IsRevision   bool      `json:"is_revision"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Slug         string    `json:"slug"`
	Permalink    string    `json:"permalink"`
	ThumbnailURL string    `json:"thumbnail_url"`
	AuthorID     int64     `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
}

// Product is the commerce product a review belongs to.
type Product struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// ReviewEvent describes a product review whose approval state changed.
type ReviewEvent struct {
	CommerceActive bool     `json:"commerce_active"`
	ReviewID       int64    `json:"review_id"`
	Type           string   `json:"type"`
	Approved       string   `json:"approved"`
	Rating         string   `json:"rating"`
	Author         string   `json:"author"`
	AuthorIP       string   `json:"author_ip"`
	Content        string   `json:"content"`
	ReviewURL      string   `json:"review_url"`
	ProductID      int64    `json:"product_id"`
	ProductURL     string   `json:"product_url"`
	Product        *Product `json:"product,omitempty"`
}

// CommentEvent describes a post comment whose approval state changed.
type CommentEvent struct {
	CommentID  int64     `json:"comment_id"`
	Type       string    `json:"type"`
	Approved   string    `json:"approved"`
	UserID     int64     `json:"user_id"`
	Avatar     string    `json:"avatar"`
	Author     string    `json:"author"`
	AuthorURL  string    `json:"author_url"`
	AuthorIP   string    `json:"author_ip"`
	Date       time.Time `json:"date"`
	Content    string    `json:"content"`
	CommentURL string    `json:"comment_url"`
	PostID     int64     `json:"post_id"`
	PostTitle  string    `json:"post_title"`
	PostSlug   string    `json:"post_slug"`
	PostURL    string    `json:"post_url"`
}

// Host-side values the notifier filters on.
const (
	postTypePost      = "post"
	postStatusPublish = "publish"
	commentTypeReview = "review"
	commentTypePlain  = ""
	approvedState     = "1"
)
