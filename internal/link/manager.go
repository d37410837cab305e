package link

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kolapsis/koraki/internal/koraki"
	"github.com/kolapsis/koraki/internal/settings"
	"github.com/kolapsis/koraki/internal/textutil"
)

// Manager validates, stores and revokes the Koraki credential link.
type Manager struct {
	client  *koraki.Client
	store   settings.Store
	siteURL string
	appURL  string
}

// NewManager creates a Manager announcing siteURL to Koraki. appURL is the
// dashboard base used in admin-facing links.
func NewManager(client *koraki.Client, store settings.Store, siteURL, appURL string) *Manager {
	return &Manager{
		client:  client,
		store:   store,
		siteURL: siteURL,
		appURL:  strings.TrimRight(appURL, "/"),
	}
}

// AppURL returns the Koraki dashboard base.
func (m *Manager) AppURL() string {
	return m.appURL
}

type integrationReply struct {
	ID              json.RawMessage `json:"id"`
	ApplicationName string          `json:"applicationName"`
}

// Validate checks the credentials against Koraki and, when accepted,
// persists them together with the returned application id. The stored
// record is untouched on every other outcome; the returned error wraps the
// matching sentinel.
func (m *Manager) Validate(ctx context.Context, clientID, clientSecret string) (LinkResult, error) {
	result := LinkResult{appURL: m.appURL}

	creds := koraki.Credentials{
		ClientID:     textutil.SanitizeField(clientID),
		ClientSecret: textutil.SanitizeField(clientSecret),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		result.Outcome = OutcomeMissingCredentials
		return result, result.err()
	}

	resp, err := m.client.PutIntegration(ctx, creds, m.siteURL)
	if err != nil {
		slog.Warn("koraki integration check failed", "error", err)
		result.Outcome = OutcomeServiceUnavailable
		return result, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	result.StatusCode = resp.StatusCode

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusNotFound:
		result.Outcome = OutcomeInvalidCredentials
		return result, result.err()
	case http.StatusNotAcceptable:
		result.Outcome = OutcomeApplicationInactive
		return result, result.err()
	default:
		slog.Warn("unexpected koraki integration status", "status", resp.StatusCode)
		result.Outcome = OutcomeUnexpectedResponse
		return result, result.err()
	}

	var reply integrationReply
	if err := json.Unmarshal(resp.Body, &reply); err != nil {
		result.Outcome = OutcomeUnexpectedResponse
		return result, fmt.Errorf("%w: decoding integration: %w", ErrUnexpectedResponse, err)
	}
	id := normalizeID(reply.ID)
	if id == "" {
		result.Outcome = OutcomeUnexpectedResponse
		return result, fmt.Errorf("%w: integration reply has no application id", ErrUnexpectedResponse)
	}

	record := settings.Record{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		ID:           id,
		Success:      true,
	}
	if err := m.store.Save(ctx, record); err != nil {
		result.Outcome = OutcomeStorageFailed
		return result, fmt.Errorf("%w: storing credentials: %w", ErrStorage, err)
	}

	result.Outcome = OutcomeLinked
	result.ApplicationID = id
	result.ApplicationName = reply.ApplicationName

	slog.Info("koraki application linked", "application_id", id, "application", reply.ApplicationName)
	return result, nil
}

// normalizeID accepts the application id as either a JSON string or number.
func normalizeID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Unlink removes the integration on Koraki and clears the stored record.
// The record is cleared whatever the remote outcome.
func (m *Manager) Unlink(ctx context.Context, clientID, clientSecret string) error {
	creds := koraki.Credentials{ClientID: clientID, ClientSecret: clientSecret}

	resp, err := m.client.DeleteIntegration(ctx, creds)
	switch {
	case err != nil:
		slog.Warn("koraki integration delete failed", "error", err)
	case resp.StatusCode >= http.StatusMultipleChoices:
		slog.Warn("koraki integration delete rejected", "status", resp.StatusCode)
	default:
		slog.Info("koraki integration deleted")
	}

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	return nil
}

// CheckStatus looks up the plan tier. Failures yield PlanUnknown.
func (m *Manager) CheckStatus(ctx context.Context, clientID, clientSecret string) Plan {
	resp, err := m.client.GetIntegration(ctx, koraki.Credentials{ClientID: clientID, ClientSecret: clientSecret})
	if err != nil {
		slog.Debug("koraki plan lookup failed", "error", err)
		return PlanUnknown
	}
	if resp.StatusCode != http.StatusOK {
		slog.Debug("koraki plan lookup rejected", "status", resp.StatusCode)
		return PlanUnknown
	}
	return ParsePlan(strings.TrimSpace(resp.Header.Get(koraki.PlanHeader)))
}

// Status is the linked state shown by the settings page and status surfaces.
type Status struct {
	Linked        bool
	ClientID      string
	ApplicationID string
	Plan          Plan
}

// DashboardURL links to the integration settings of the linked application.
func (m *Manager) DashboardURL(applicationID string) string {
	return fmt.Sprintf("%s/applications/view/%s/integrations/wordpress?source=wpplugin", m.appURL, applicationID)
}

// Status loads the record and, when linked, resolves the plan tier.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	record, err := m.store.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		Linked:        record.Linked(),
		ClientID:      record.ClientID,
		ApplicationID: record.ID,
	}
	if st.Linked {
		st.Plan = m.CheckStatus(ctx, record.ClientID, record.ClientSecret)
	}
	return st, nil
}

// UnlinkStored unlinks using the credentials currently on record. An
// unreadable record skips the remote delete but is still cleared.
func (m *Manager) UnlinkStored(ctx context.Context) error {
	record, err := m.store.Load(ctx)
	if err != nil {
		slog.Warn("loading credentials for unlink failed", "error", err)
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			return fmt.Errorf("clearing credentials: %w", clearErr)
		}
		return nil
	}
	return m.Unlink(ctx, record.ClientID, record.ClientSecret)
}
