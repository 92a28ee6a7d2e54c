package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Requester issues a request carrying the current credential.
// Implementations own credential expiry; callers never special-case it.
type Requester interface {
	AuthenticatedRequest(ctx context.Context, method, path string, query url.Values, body, out any) error
}

// Endpoints exposes the authenticated API operations on top of a Requester.
type Endpoints struct {
	R      Requester
	Region string // default region for parsing local phone numbers
	Now    func() time.Time
}

func (e Endpoints) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Dashboard calls GET /dashboard.
func (e Endpoints) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if err := e.R.AuthenticatedRequest(ctx, http.MethodGet, "/dashboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search calls GET /search. page 0 or 1 is the first page.
func (e Endpoints) Search(ctx context.Context, q string, page int) (*SearchPage, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, &ValidationError{Field: "q", Reason: "enter a name or phone number to search"}
	}

	query := url.Values{"q": {q}}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}

	var out SearchPage
	if err := e.R.AuthenticatedRequest(ctx, http.MethodGet, "/search", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddContact calls POST /contact.
func (e Endpoints) AddContact(ctx context.Context, in NewContact) (*Contact, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" {
		return nil, &ValidationError{Field: "first_name", Reason: "first name is required"}
	}
	phone, err := NormalizePhone("phone_number", in.PhoneNumber, e.Region)
	if err != nil {
		return nil, err
	}
	in.PhoneNumber = phone

	var out Contact
	if err := e.R.AuthenticatedRequest(ctx, http.MethodPost, "/contact", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TopContacts calls GET /interactions/top. The server caps limit at 50.
func (e Endpoints) TopContacts(ctx context.Context, limit int) ([]TopContact, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": {strconv.Itoa(limit)}}
	}

	var out []TopContact
	if err := e.R.AuthenticatedRequest(ctx, http.MethodGet, "/interactions/top", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReportSpam calls POST /spam.
func (e Endpoints) ReportSpam(ctx context.Context, in SpamReport) (*ScamRecord, error) {
	phone, err := NormalizePhone("phone_number", in.PhoneNumber, e.Region)
	if err != nil {
		return nil, err
	}
	in.PhoneNumber = phone
	in.Description = strings.TrimSpace(in.Description)

	var out ScamRecord
	if err := e.R.AuthenticatedRequest(ctx, http.MethodPost, "/spam", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SpamStats calls GET /interactions/spam-stats.
func (e Endpoints) SpamStats(ctx context.Context, f SpamFilter) ([]SpamStat, error) {
	if f.PhoneNumber != "" {
		phone, err := NormalizePhone("phone_number", f.PhoneNumber, e.Region)
		if err != nil {
			return nil, err
		}
		f.PhoneNumber = phone
	}

	var out []SpamStat
	if err := e.R.AuthenticatedRequest(ctx, http.MethodGet, "/interactions/spam-stats", f.Query(e.now()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentInteractions calls GET /interactions/recent, optionally filtered by type.
func (e Endpoints) RecentInteractions(ctx context.Context, interactionType string, page int) (*InteractionPage, error) {
	query := url.Values{}
	if interactionType != "" {
		if !ValidInteractionType(interactionType) {
			return nil, &ValidationError{Field: "type", Reason: "must be call, message or spam_report"}
		}
		query.Set("type", interactionType)
	}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}

	var out InteractionPage
	if err := e.R.AuthenticatedRequest(ctx, http.MethodGet, "/interactions/recent", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogInteraction calls POST /interaction.
func (e Endpoints) LogInteraction(ctx context.Context, in NewInteraction) (*Interaction, error) {
	if !ValidInteractionType(in.InteractionType) {
		return nil, &ValidationError{Field: "interaction_type", Reason: "must be call, message or spam_report"}
	}
	phone, err := NormalizePhone("receiver_phone", in.ReceiverPhone, e.Region)
	if err != nil {
		return nil, err
	}
	in.ReceiverPhone = phone

	var out Interaction
	if err := e.R.AuthenticatedRequest(ctx, http.MethodPost, "/interaction", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
