// Package session holds the client's credential pair and user profile and
// mirrors them to a durable key/value store.
package session

import (
	"strings"

	"golang.org/x/oauth2"
)

// Store keys. These three keys are the whole persisted session.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Keys lists every key a session writes.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// User is the profile snapshot returned by login and signup.
type User struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`
}

// DisplayName prefers the server-computed full name.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Session is an authenticated client session.
// RefreshToken is held but never used to renew AccessToken.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         User
}

// Valid reports whether both halves of the session are present.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.User.PhoneNumber != ""
}

// Token returns the credential pair as an oauth2 bearer token.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
	}
}
