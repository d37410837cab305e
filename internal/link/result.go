package link

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials  = errors.New("missing credentials")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrApplicationInactive = errors.New("application inactive")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrUnexpectedResponse  = errors.New("unexpected response")
	ErrStorage             = errors.New("settings storage failed")
)

// Outcome classifies a link attempt.
type Outcome int

const (
	OutcomeLinked Outcome = iota
	OutcomeMissingCredentials
	OutcomeInvalidCredentials
	OutcomeApplicationInactive
	OutcomeServiceUnavailable
	OutcomeUnexpectedResponse
	OutcomeStorageFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLinked:
		return "linked"
	case OutcomeMissingCredentials:
		return "missing_credentials"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeApplicationInactive:
		return "application_inactive"
	case OutcomeServiceUnavailable:
		return "service_unavailable"
	case OutcomeStorageFailed:
		return "storage_failed"
	default:
		return "unexpected_response"
	}
}

// LinkResult is what the admin sees after submitting credentials.
type LinkResult struct {
	Outcome         Outcome
	StatusCode      int
	ApplicationID   string
	ApplicationName string

	appURL string
}

// OK reports whether the credentials were accepted and stored.
func (r LinkResult) OK() bool {
	return r.Outcome == OutcomeLinked
}

// Message is the inline notice shown on the settings page.
func (r LinkResult) Message() string {
	switch r.Outcome {
	case OutcomeLinked:
		return fmt.Sprintf("Successfully integrated with %s.", r.ApplicationName)
	case OutcomeMissingCredentials:
		return "Please enter client id and client secret obtained from " + r.appURL
	case OutcomeInvalidCredentials:
		return "Invalid client id or client secret provided"
	case OutcomeApplicationInactive:
		return "Koraki application is inactive. Please activate it from " + r.appURL
	case OutcomeServiceUnavailable:
		return "Service not available at the moment"
	case OutcomeStorageFailed:
		return "Koraki accepted the credentials but they could not be saved"
	default:
		return fmt.Sprintf("Koraki returned an unexpected response (HTTP %d)", r.StatusCode)
	}
}

// CustomizeURL links to the widget customization page of a linked application.
func (r LinkResult) CustomizeURL() string {
	if r.ApplicationID == "" {
		return ""
	}
	return fmt.Sprintf("%s/applications/view/%s/customize?source=wpplugin", r.appURL, r.ApplicationID)
}

func (r LinkResult) err() error {
	switch r.Outcome {
	case OutcomeLinked:
		return nil
	case OutcomeMissingCredentials:
		return ErrMissingCredentials
	case OutcomeInvalidCredentials:
		return ErrInvalidCredentials
	case OutcomeApplicationInactive:
		return ErrApplicationInactive
	case OutcomeServiceUnavailable:
		return ErrServiceUnavailable
	case OutcomeStorageFailed:
		return ErrStorage
	default:
		return fmt.Errorf("%w: HTTP %d", ErrUnexpectedResponse, r.StatusCode)
	}
}
