// Package api is a typed client for the contact/spam lookup REST API.
package api

import (
	"net/url"
	"strconv"
	"time"

	"github.com/ringcheck/ringcheck/internal/session"
)

// Interaction types accepted by the API.
const (
	InteractionCall       = "call"
	InteractionMessage    = "message"
	InteractionSpamReport = "spam_report"
)

// ValidInteractionType reports whether t is one of the known interaction types.
func ValidInteractionType(t string) bool {
	switch t {
	case InteractionCall, InteractionMessage, InteractionSpamReport:
		return true
	}
	return false
}

// LoginRequest is the body of POST /user/login.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// SignupRequest is the body of POST /user/signup.
type SignupRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         session.User `json:"user"`
}

// Dashboard is the payload of GET /dashboard.
type Dashboard struct {
	User               DashboardUser      `json:"user"`
	TotalInteractions  int                `json:"total_interactions"`
	InteractionStats   InteractionStats   `json:"interaction_stats"`
	RecentInteractions []RecentEntry      `json:"recent_interactions"`
	TopContacts        []DashboardContact `json:"top_contacts"`
	SpamStats          SpamCounts         `json:"spam_stats"`
	ActivityTrend      []TrendPoint       `json:"activity_trend"`
}

// DashboardUser is the short profile embedded in the dashboard.
type DashboardUser struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// InteractionStats counts the user's interactions by type.
type InteractionStats struct {
	Calls       int `json:"calls"`
	Messages    int `json:"messages"`
	SpamReports int `json:"spam_reports"`
}

// RecentEntry is one line of the dashboard's recent interactions.
type RecentEntry struct {
	Type      string `json:"type"`
	With      string `json:"with"`
	Date      string `json:"date"`
	Direction string `json:"direction"` // outgoing | incoming
}

// DashboardContact is one of the user's most-contacted numbers.
type DashboardContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Count int    `json:"count"`
}

// SpamCounts reports how often the user was reported and has reported.
type SpamCounts struct {
	Received int `json:"received"`
	Reported int `json:"reported"`
}

// TrendPoint is one day of the activity trend.
type TrendPoint struct {
	Date  string `json:"date"`
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// SearchResult is one ranked hit from GET /search.
type SearchResult struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PhoneNumber    string `json:"phone_number"`
	IsRegistered   bool   `json:"is_registered"`
	SpamLikelihood int    `json:"spam_likelihood"`
	MatchScore     int    `json:"match_score"`
}

// SearchPage is a page of search results.
type SearchPage struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []SearchResult `json:"results"`
}

// NewContact is the body of POST /contact.
type NewContact struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// Contact is a saved contact.
type Contact struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	FullName       string `json:"full_name"`
	PhoneNumber    string `json:"phone_number"`
	SpamLikelihood int    `json:"spam_likelihood"`
	CreatedAt      string `json:"created_at"`
}

// TopContact is one entry of GET /interactions/top.
type TopContact struct {
	ContactPhone     string `json:"contact_phone"`
	ContactName      string `json:"contact_name"`
	InteractionCount int    `json:"interaction_count"`
	IsRegistered     bool   `json:"is_registered"`
}

// SpamReport is the body of POST /spam.
type SpamReport struct {
	PhoneNumber string `json:"phone_number"`
	Description string `json:"description,omitempty"`
}

// ScamRecord is a stored spam report.
type ScamRecord struct {
	ID             string        `json:"id"`
	PhoneNumber    string        `json:"phone_number"`
	SpamLikelihood int           `json:"spam_likelihood"`
	Description    string        `json:"description"`
	ReportedBy     *session.User `json:"reported_by"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
}

// SpamStat aggregates the reports against one number.
type SpamStat struct {
	PhoneNumber       string   `json:"phone_number"`
	SpamCount         int      `json:"spam_count"`
	UniqueReporters   int      `json:"unique_reporters"`
	ReportedByUsers   []string `json:"reported_by_users"`
	LatestReportDate  *string  `json:"latest_report_date"`
	LatestDescription *string  `json:"latest_description"`
}

// SpamFilter narrows GET /interactions/spam-stats.
type SpamFilter struct {
	MinReports  int
	Days        int    // reports from the last N days; ignored when StartDate is set
	StartDate   string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD
	PhoneNumber string
}

// Query encodes the filter, resolving Days against now.
func (f SpamFilter) Query(now time.Time) url.Values {
	q := url.Values{}
	if f.MinReports > 0 {
		q.Set("min_reports", strconv.Itoa(f.MinReports))
	}
	switch {
	case f.StartDate != "":
		q.Set("start_date", f.StartDate)
	case f.Days > 0:
		q.Set("start_date", now.AddDate(0, 0, -f.Days).Format("2006-01-02"))
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	if f.PhoneNumber != "" {
		q.Set("phone_number", f.PhoneNumber)
	}
	return q
}

// Interaction is a recorded call, message or spam report.
type Interaction struct {
	ID              string         `json:"id"`
	Initiator       *session.User  `json:"initiator"`
	Receiver        *session.User  `json:"receiver"`
	ReceiverPhone   string         `json:"receiver_phone"`
	InteractionType string         `json:"interaction_type"`
	Metadata        map[string]any `json:"metadata"`
	CreatedAt       string         `json:"created_at"`
}

// InteractionPage is a page of GET /interactions/recent.
type InteractionPage struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []Interaction `json:"results"`
}

// NewInteraction is the body of POST /interaction.
type NewInteraction struct {
	ReceiverPhone   string         `json:"receiver_phone"`
	InteractionType string         `json:"interaction_type"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}
