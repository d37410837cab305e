// Package admin serves the settings page used to connect the site to a
// Koraki application, and the per-post opt-in fragment.
package admin

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kolapsis/koraki/internal/link"
	"github.com/kolapsis/koraki/internal/settings"
)

// Path is where the admin router is mounted.
const Path = "/admin"

//go:embed templates/*.html
var templateFS embed.FS

// Linker is the credential manager as seen by the settings page.
type Linker interface {
	Validate(ctx context.Context, clientID, clientSecret string) (link.LinkResult, error)
	UnlinkStored(ctx context.Context) error
	Status(ctx context.Context) (link.Status, error)
	DashboardURL(applicationID string) string
	AppURL() string
}

// Store is the settings storage the meta box reads.
type Store interface {
	Load(ctx context.Context) (settings.Record, error)
	OptIn(ctx context.Context, postID int64) (string, error)
}

// Site identifies the host site in the onboarding link.
type Site struct {
	Name string
	URL  string
	// AdminURL is the externally reachable settings page Koraki redirects back to.
	AdminURL string
}

// Handler serves the admin pages.
type Handler struct {
	linker Linker
	store  Store
	site   Site
	tmpl   *template.Template
}

// NewHandler parses the embedded templates and returns a Handler.
func NewHandler(l Linker, store Store, site Site) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{linker: l, store: store, site: site, tmpl: tmpl}, nil
}

// Routes returns the admin router, to be mounted under Path.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(sameOrigin)
	r.Get("/", h.settingsPage)
	r.Post("/credentials", h.submitCredentials)
	r.Post("/unlink", h.unlink)
	r.Get("/posts/{id}/meta-box", h.metaBox)
	return r
}

// ConnectURL starts Koraki's one-click onboarding, which creates an
// application and redirects back to the settings page with credentials.
func (h *Handler) ConnectURL() string {
	q := url.Values{}
	q.Set("autocreate", "true")
	q.Set("name", h.site.Name)
	q.Set("url", h.site.URL)
	q.Set("redirect", h.site.AdminURL)
	return h.linker.AppURL() + "/applications/new?" + q.Encode()
}

type notice struct {
	Text         string
	OK           bool
	CustomizeURL string
}

type pageData struct {
	SiteName      string
	Linked        bool
	PlanLabel     string
	FreePlan      bool
	DashboardURL  string
	UpgradeURL    string
	ConnectURL    string
	CredentialURL string
	ClientID      string
	Notice        *notice
	ShowManual    bool
}

func (h *Handler) settingsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	st, err := h.linker.Status(ctx)
	if err != nil {
		slog.Error("loading link status", "error", err)
		http.Error(w, "could not load settings", http.StatusInternalServerError)
		return
	}

	// Onboarding return: Koraki appends the new credentials to the redirect.
	q := r.URL.Query()
	if !st.Linked && q.Get("client_id") != "" && q.Get("client_secret") != "" {
		result, err := h.linker.Validate(ctx, q.Get("client_id"), q.Get("client_secret"))
		if result.OK() {
			http.Redirect(w, r, Path, http.StatusSeeOther)
			return
		}
		slog.Info("onboarding credentials rejected", "outcome", result.Outcome, "error", err)
		h.render(w, http.StatusOK, h.pageData(st, noticeFor(result), true))
		return
	}

	h.render(w, http.StatusOK, h.pageData(st, nil, false))
}

func (h *Handler) submitCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	result, err := h.linker.Validate(ctx, r.PostFormValue("client_id"), r.PostFormValue("client_secret"))
	if err != nil {
		slog.Info("credentials rejected", "outcome", result.Outcome, "error", err)
	}

	st, err := h.linker.Status(ctx)
	if err != nil {
		slog.Error("loading link status", "error", err)
		http.Error(w, "could not load settings", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, h.pageData(st, noticeFor(result), !result.OK()))
}

func (h *Handler) unlink(w http.ResponseWriter, r *http.Request) {
	if err := h.linker.UnlinkStored(r.Context()); err != nil {
		slog.Error("unlinking", "error", err)
		http.Error(w, "could not unlink", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, Path, http.StatusSeeOther)
}

func (h *Handler) pageData(st link.Status, n *notice, manual bool) pageData {
	data := pageData{
		SiteName:      h.site.Name,
		Linked:        st.Linked,
		ConnectURL:    h.ConnectURL(),
		CredentialURL: h.linker.AppURL() + "/applications/?source=wpplugin",
		ClientID:      st.ClientID,
		Notice:        n,
		ShowManual:    manual,
	}
	if st.Linked {
		data.PlanLabel = st.Plan.Label()
		data.FreePlan = st.Plan == link.PlanFree
		data.DashboardURL = h.linker.DashboardURL(st.ApplicationID)
		data.UpgradeURL = h.linker.AppURL() + "/subscription/add"
	}
	return data
}

func noticeFor(result link.LinkResult) *notice {
	return &notice{
		Text:         result.Message(),
		OK:           result.OK(),
		CustomizeURL: result.CustomizeURL(),
	}
}

type metaBoxData struct {
	PostID      int64
	OptedOut    bool
	AdvancedURL string
}

func (h *Handler) metaBox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || postID <= 0 {
		http.Error(w, "post id must be a positive integer", http.StatusBadRequest)
		return
	}

	value, err := h.store.OptIn(ctx, postID)
	if err != nil {
		slog.Error("reading opt-in flag", "post_id", postID, "error", err)
		http.Error(w, "could not read opt-in flag", http.StatusInternalServerError)
		return
	}
	record, err := h.store.Load(ctx)
	if err != nil {
		slog.Error("loading settings", "error", err)
		http.Error(w, "could not load settings", http.StatusInternalServerError)
		return
	}

	data := metaBoxData{
		PostID:      postID,
		OptedOut:    value == "false",
		AdvancedURL: Path,
	}
	if record.Linked() {
		data.AdvancedURL = h.linker.DashboardURL(record.ID)
	}

	h.renderTemplate(w, "metabox.html", http.StatusOK, data)
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	h.renderTemplate(w, "settings.html", status, data)
}

func (h *Handler) renderTemplate(w http.ResponseWriter, name string, status int, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("rendering template", "template", name, "error", err)
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// sameOrigin rejects state-changing requests whose Origin does not match the
// requested host. Browsers resend Basic credentials on cross-site posts.
func sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" {
			u, err := url.Parse(origin)
			if err != nil || u.Host != r.Host {
				http.Error(w, "cross-origin request rejected", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
