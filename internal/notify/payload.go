package notify

// Topic names a notification category. It is both a webhook path segment
// and the x-woo-topic header value.
type Topic string

const (
	TopicPostCreated    Topic = "wppostcreated"
	TopicPostUpdated    Topic = "wppostupdated"
	TopicReviewCreated  Topic = "wcreviewcreated"
	TopicCommentCreated Topic = "wpcommentcreated"
)

// Payload is one of PostCreated, PostUpdated, ReviewCreated or
// CommentCreated. Every field encodes as a JSON string.
type Payload interface {
	Topic() Topic
	payload()
}

// PostFields is shared by the two post variants.
type PostFields struct {
	Image        string `json:"image"`
	URL          string `json:"url"`
	Group        string `json:"group"`
	PostTitle    string `json:"post_title"`
	PostContent  string `json:"post_content"`
	PostName     string `json:"post_name"`
	PostModified string `json:"post_modified"`
	PostDate     string `json:"post_date"`
	PostID       string `json:"post_id"`
	AuthorID     string `json:"author_id"`
	AuthorName   string `json:"author_name"`
}

type PostCreated struct{ PostFields }

type PostUpdated struct{ PostFields }

type ReviewCreated struct {
	Rating         string `json:"rating"`
	CommentAuthor  string `json:"comment_author"`
	CommentContent string `json:"comment_content"`
	IPAddress      string `json:"ip_address"`
	ProductID      string `json:"product_id"`
	ReviewID       string `json:"review_id"`
	ProductURL     string `json:"product_url"`
	ReviewURL      string `json:"review_url"`
	ProductName    string `json:"product_name,omitempty"`
	Image          string `json:"image,omitempty"`
}

type CommentCreated struct {
	UserID           string `json:"user_id"`
	Image            string `json:"image"`
	CommentAuthor    string `json:"comment_author"`
	CommentAuthorURL string `json:"comment_author_url"`
	CommentDate      string `json:"comment_date"`
	CommentContent   string `json:"comment_content"`
	IPAddress        string `json:"ip_address"`
	PostID           string `json:"post_id"`
	PostTitle        string `json:"post_title"`
	PostName         string `json:"post_name"`
	PostURL          string `json:"post_url"`
	CommentURL       string `json:"comment_url"`
	CommentID        string `json:"comment_id"`
}

func (PostCreated) Topic() Topic    { return TopicPostCreated }
func (PostUpdated) Topic() Topic    { return TopicPostUpdated }
func (ReviewCreated) Topic() Topic  { return TopicReviewCreated }
func (CommentCreated) Topic() Topic { return TopicCommentCreated }

func (PostCreated) payload()    {}
func (PostUpdated) payload()    {}
func (ReviewCreated) payload()  {}
func (CommentCreated) payload() {}
