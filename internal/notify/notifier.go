package notify

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/kolapsis/koraki/internal/koraki"
	"github.com/kolapsis/koraki/internal/settings"
	"github.com/kolapsis/koraki/internal/textutil"
)

const (
	// DefaultUpdateThreshold is how many minutes may separate a post's
	// modification from its creation before a publish counts as an update.
	DefaultUpdateThreshold = 0.20
	// DefaultExcerptLength is the character limit for content excerpts.
	DefaultExcerptLength = 40

	dateLayout = "2006-01-02 15:04:05"
)

// Notifier receives host lifecycle events. Each method reports the topic
// and whether a notification was sent.
type Notifier interface {
	OnContentPublished(ctx context.Context, ev ContentEvent) (Topic, bool)
	OnReviewApproved(ctx context.Context, ev ReviewEvent) (Topic, bool)
	OnCommentApproved(ctx context.Context, ev CommentEvent) (Topic, bool)
}

// Sender abstracts the Koraki webhook call.
type Sender interface {
	PostWebhook(ctx context.Context, creds koraki.Credentials, topic string, payload any) (*koraki.Response, error)
}

// Options tune the event classification. Zero values select the defaults.
type Options struct {
	UpdateThreshold float64
	ExcerptLength   int
}

// WebhookNotifier forwards qualifying events to Koraki webhooks.
type WebhookNotifier struct {
	sender    Sender
	store     settings.Store
	threshold float64
	excerpt   int
}

// NewWebhookNotifier creates a WebhookNotifier. Credentials are read from
// store on every event.
func NewWebhookNotifier(sender Sender, store settings.Store, opts Options) *WebhookNotifier {
	if opts.UpdateThreshold <= 0 {
		opts.UpdateThreshold = DefaultUpdateThreshold
	}
	if opts.ExcerptLength <= 0 {
		opts.ExcerptLength = DefaultExcerptLength
	}
	return &WebhookNotifier{
		sender:    sender,
		store:     store,
		threshold: opts.UpdateThreshold,
		excerpt:   opts.ExcerptLength,
	}
}

// OnContentPublished notifies about a published post the author opted in.
func (n *WebhookNotifier) OnContentPublished(ctx context.Context, ev ContentEvent) (Topic, bool) {
	if ev.IsRevision || ev.Status != postStatusPublish || ev.Type != postTypePost {
		return "", false
	}

	flag, err := n.store.OptIn(ctx, ev.PostID)
	if err != nil {
		slog.Debug("reading opt-in flag failed", "post_id", ev.PostID, "error", err)
		return "", false
	}
	if flag != settings.OptInEnabled {
		return "", false
	}

	p := n.postFields(ev)
	var payload Payload = PostCreated{p}
	if ElapsedMinutes(ev.Created, ev.Modified) > n.threshold {
		payload = PostUpdated{p}
	}

	return n.dispatch(ctx, payload)
}

func (n *WebhookNotifier) postFields(ev ContentEvent) PostFields {
	image := ev.ThumbnailURL
	if image == "" {
		image = ev.AuthorAvatar
	}
	return PostFields{
		Image:        image,
		URL:          ev.Permalink,
		Group:        "wp_" + formatID(ev.PostID),
		PostTitle:    ev.Title,
		PostContent:  textutil.Excerpt(ev.Content, n.excerpt),
		PostName:     ev.Slug,
		PostModified: formatDate(ev.Modified),
		PostDate:     formatDate(ev.Created),
		PostID:       formatID(ev.PostID),
		AuthorID:     formatID(ev.AuthorID),
		AuthorName:   ev.AuthorName,
	}
}

// OnReviewApproved notifies about an approved product review.
func (n *WebhookNotifier) OnReviewApproved(ctx context.Context, ev ReviewEvent) (Topic, bool) {
	if !ev.CommerceActive || ev.Type != commentTypeReview || ev.Approved != approvedState {
		return "", false
	}

	payload := ReviewCreated{
		Rating:         ev.Rating,
		CommentAuthor:  ev.Author,
		CommentContent: textutil.Excerpt(ev.Content, n.excerpt),
		IPAddress:      ev.AuthorIP,
		ProductID:      formatID(ev.ProductID),
		ReviewID:       formatID(ev.ReviewID),
		ProductURL:     ev.ProductURL,
		ReviewURL:      ev.ReviewURL,
	}
	if ev.Product != nil {
		payload.ProductName = ev.Product.Name
		payload.Image = ev.Product.ImageURL
	}

	return n.dispatch(ctx, payload)
}

// OnCommentApproved notifies about an approved ordinary comment.
func (n *WebhookNotifier) OnCommentApproved(ctx context.Context, ev CommentEvent) (Topic, bool) {
	if ev.Type != commentTypePlain || ev.Approved != approvedState {
		return "", false
	}

	payload := CommentCreated{
		UserID:           formatID(ev.UserID),
		Image:            ev.Avatar,
		CommentAuthor:    ev.Author,
		CommentAuthorURL: ev.AuthorURL,
		CommentDate:      formatDate(ev.Date),
		CommentContent:   textutil.Excerpt(ev.Content, n.excerpt),
		IPAddress:        ev.AuthorIP,
		PostID:           formatID(ev.PostID),
		PostTitle:        ev.PostTitle,
		PostName:         ev.PostSlug,
		PostURL:          ev.PostURL,
		CommentURL:       ev.CommentURL,
		CommentID:        formatID(ev.CommentID),
	}

	return n.dispatch(ctx, payload)
}

// dispatch sends payload with the stored credentials. The response is
// ignored and errors are only logged.
func (n *WebhookNotifier) dispatch(ctx context.Context, payload Payload) (Topic, bool) {
	topic := payload.Topic()

	record, err := n.store.Load(ctx)
	if err != nil {
		slog.Debug("loading credentials failed", "topic", topic, "error", err)
		return topic, false
	}
	if !record.HasCredentials() {
		slog.Debug("no koraki credentials stored, skipping notification", "topic", topic)
		return topic, false
	}

	creds := koraki.Credentials{ClientID: record.ClientID, ClientSecret: record.ClientSecret}
	if _, err := n.sender.PostWebhook(ctx, creds, string(topic), payload); err != nil {
		slog.Debug("koraki notification failed", "topic", topic, "error", err)
	}
	return topic, true
}

// ElapsedMinutes is |modified - created| in minutes, rounded to two decimals.
func ElapsedMinutes(created, modified time.Time) float64 {
	seconds := math.Abs(float64(modified.Unix() - created.Unix()))
	return math.Round(seconds/60*100) / 100
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
