package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Call records one request received by the fake API.
type Call struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
}

type fakeUser struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Password  string
}

type fakeContact struct {
	FirstName string
	LastName  string
	Phone     string
	Count     int
}

type fakeReport struct {
	Phone       string
	Description string
	Reporter    string
	At          time.Time
}

// FakeAPI is an in-process stand-in for the lookup REST API.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]*fakeUser // by phone
	tokens   map[string]string    // token -> phone
	contacts map[string][]fakeContact
	reports  []fakeReport
	calls    []Call
	holds    map[string]chan struct{}
	failures map[string]failure
	nextID   int
}

type failure struct {
	status int
	body   string
}

var signingKey = []byte("fake-api-signing-key")

// NewFakeAPI starts a fake API server that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		users:    make(map[string]*fakeUser),
		tokens:   make(map[string]string),
		contacts: make(map[string][]fakeContact),
		holds:    make(map[string]chan struct{}),
		failures: make(map[string]failure),
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Post("/api/user/login", f.handleLogin)
	r.Post("/api/user/signup", f.handleSignup)
	r.Group(func(r chi.Router) {
		r.Use(f.requireBearer)
		r.Get("/api/dashboard", f.handleDashboard)
		r.Get("/api/search", f.handleSearch)
		r.Post("/api/contact", f.handleAddContact)
		r.Post("/api/spam", f.handleReportSpam)
		r.Get("/api/interactions/top", f.handleTop)
		r.Get("/api/interactions/spam-stats", f.handleSpamStats)
		r.Get("/api/interactions/recent", f.handleRecent)
		r.Post("/api/interaction", f.handleLogInteraction)
	})

	f.Server = httptest.NewServer(r)
	t.Cleanup(func() {
		f.ReleaseAll()
		f.Server.Close()
	})
	return f
}

// BaseURL is the API root to configure clients with.
func (f *FakeAPI) BaseURL() string {
	return f.Server.URL + "/api"
}

// AddUser registers a user that can log in.
func (f *FakeAPI) AddUser(phone, password, firstName, lastName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.users[phone] = &fakeUser{
		ID:        fmt.Sprintf("user-%d", f.nextID),
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Password:  password,
	}
}

// ExpireTokens invalidates every issued access token.
func (f *FakeAPI) ExpireTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]string)
}

// FailNext makes the next request to path answer with status and body.
func (f *FakeAPI) FailNext(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = failure{status: status, body: body}
}

// Hold makes requests to path block until the returned release is called.
func (f *FakeAPI) Hold(path string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.holds[path] = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.holds[path] == ch {
				delete(f.holds, path)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
}

// ReleaseAll unblocks every held path.
func (f *FakeAPI) ReleaseAll() {
	f.mu.Lock()
	holds := f.holds
	f.holds = make(map[string]chan struct{})
	f.mu.Unlock()
	for _, ch := range holds {
		close(ch)
	}
}

// Calls returns a copy of the recorded requests.
func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the recorded requests whose path ends with suffix.
func (f *FakeAPI) CallsTo(suffix string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if strings.HasSuffix(c.Path, suffix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api")

		f.mu.Lock()
		f.calls = append(f.calls, Call{
			Method:        r.Method,
			Path:          path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		hold := f.holds[path]
		fail, failing := f.failures[path]
		if failing {
			delete(f.failures, path)
		}
		f.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeRaw(w, fail.status, fail.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		phone, ok := f.tokens[token]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"detail": "Given token not valid for any token type",
			})
			return
		}
		r.Header.Set("X-Fake-Phone", phone)
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) issue(u *fakeUser) map[string]any {
	access, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"token_type": "access",
		"user_id":    u.ID,
		"jti":        fmt.Sprintf("jti-%d-%d", len(f.tokens), time.Now().UnixNano()),
		"exp":        time.Now().Add(5 * time.Minute).Unix(),
	}).SignedString(signingKey)
	f.tokens[access] = u.Phone
	return map[string]any{
		"access_token":  access,
		"refresh_token": "refresh-" + u.ID,
		"user": map[string]any{
			"id":           u.ID,
			"first_name":   u.FirstName,
			"last_name":    u.LastName,
			"full_name":    strings.TrimSpace(u.FirstName + " " + u.LastName),
			"phone_number": u.Phone,
			"email":        u.Email,
		},
	}
}

func (f *FakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PhoneNumber string `json:"phone_number"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "malformed body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[in.PhoneNumber]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "First name required for new account creation"})
		return
	}
	if u.Password != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, f.issue(u))
}

func (f *FakeAPI) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		PhoneNumber string `json:"phone_number"`
		Email       string `json:"email"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "malformed body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[in.PhoneNumber]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"phone_number": []string{"A user with this phone number already exists"},
		})
		return
	}
	f.nextID++
	u := &fakeUser{
		ID:        fmt.Sprintf("user-%d", f.nextID),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.PhoneNumber,
		Email:     in.Email,
		Password:  in.Password,
	}
	f.users[u.Phone] = u
	writeJSON(w, http.StatusCreated, f.issue(u))
}

func (f *FakeAPI) handleDashboard(w http.ResponseWriter, r *http.Request) {
	phone := r.Header.Get("X-Fake-Phone")

	f.mu.Lock()
	u := f.users[phone]
	reported := 0
	received := 0
	for _, rep := range f.reports {
		if rep.Reporter == phone {
			reported++
		}
		if rep.Phone == phone {
			received++
		}
	}
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"user":               map[string]any{"name": u.FirstName + " " + u.LastName, "phone": u.Phone, "email": u.Email},
		"total_interactions": 3,
		"interaction_stats":  map[string]any{"calls": 1, "messages": 1, "spam_reports": reported},
		"recent_interactions": []map[string]any{
			{"type": "call", "with": "Priya Shah", "date": "2026-10-18 09:30", "direction": "outgoing"},
			{"type": "message", "with": "+14155550100", "date": "2026-10-17 21:05", "direction": "incoming"},
		},
		"top_contacts":   []map[string]any{{"name": "Priya Shah", "phone": "+14155550123", "count": 4}},
		"spam_stats":     map[string]any{"received": received, "reported": reported},
		"activity_trend": []map[string]any{{"date": "2026-10-18", "day": "Sun", "count": 2}},
	})
}

func (f *FakeAPI) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": `Search query parameter "q" is required.`})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	results := []map[string]any{}
	for _, u := range f.users {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if strings.Contains(strings.ToLower(name), q) || strings.Contains(u.Phone, q) {
			results = append(results, map[string]any{
				"id": u.ID, "name": name, "phone_number": u.Phone,
				"is_registered": true, "spam_likelihood": f.reportCount(u.Phone), "match_score": 100,
			})
		}
	}
	for _, list := range f.contacts {
		for _, c := range list {
			name := strings.TrimSpace(c.FirstName + " " + c.LastName)
			if strings.Contains(strings.ToLower(name), q) || strings.Contains(c.Phone, q) {
				results = append(results, map[string]any{
					"id": "contact-" + c.Phone, "name": name, "phone_number": c.Phone,
					"is_registered": false, "spam_likelihood": f.reportCount(c.Phone), "match_score": 80,
				})
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(results), "next": nil, "previous": nil, "results": results,
	})
}

func (f *FakeAPI) reportCount(phone string) int {
	n := 0
	for _, rep := range f.reports {
		if rep.Phone == phone {
			n++
		}
	}
	return n
}

func (f *FakeAPI) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.FirstName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"first_name": []string{"This field is required."}})
		return
	}
	owner := r.Header.Get("X-Fake-Phone")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts[owner] = append(f.contacts[owner], fakeContact{
		FirstName: in.FirstName, LastName: in.LastName, Phone: in.PhoneNumber, Count: 1,
	})
	f.nextID++
	writeJSON(w, http.StatusCreated, map[string]any{
		"id": fmt.Sprintf("contact-%d", f.nextID), "first_name": in.FirstName, "last_name": in.LastName,
		"full_name": strings.TrimSpace(in.FirstName + " " + in.LastName), "phone_number": in.PhoneNumber,
		"spam_likelihood": f.reportCount(in.PhoneNumber), "created_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (f *FakeAPI) handleTop(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid limit parameter. Must be an integer."})
			return
		}
		limit = min(n, 50)
	}
	owner := r.Header.Get("X-Fake-Phone")

	f.mu.Lock()
	defer f.mu.Unlock()
	out := []map[string]any{}
	for _, c := range f.contacts[owner] {
		if len(out) >= limit {
			break
		}
		_, registered := f.users[c.Phone]
		out = append(out, map[string]any{
			"contact_phone": c.Phone, "contact_name": strings.TrimSpace(c.FirstName + " " + c.LastName),
			"interaction_count": c.Count, "is_registered": registered,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) handleReportSpam(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PhoneNumber string `json:"phone_number"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.PhoneNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"phone_number": []string{"This field is required."}})
		return
	}
	reporter := r.Header.Get("X-Fake-Phone")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, fakeReport{
		Phone: in.PhoneNumber, Description: in.Description, Reporter: reporter, At: time.Now(),
	})
	f.nextID++
	writeJSON(w, http.StatusCreated, map[string]any{
		"id": fmt.Sprintf("scam-%d", f.nextID), "phone_number": in.PhoneNumber,
		"spam_likelihood": f.reportCount(in.PhoneNumber), "description": in.Description,
		"created_at": time.Now().UTC().Format(time.RFC3339), "updated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (f *FakeAPI) handleSpamStats(w http.ResponseWriter, r *http.Request) {
	minReports := 0
	if raw := r.URL.Query().Get("min_reports"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid min_reports. Must be an integer."})
			return
		}
		minReports = n
	}
	onlyPhone := r.URL.Query().Get("phone_number")

	f.mu.Lock()
	defer f.mu.Unlock()
	type agg struct {
		count     int
		reporters map[string]bool
		latest    fakeReport
	}
	byPhone := map[string]*agg{}
	var order []string
	for _, rep := range f.reports {
		if onlyPhone != "" && rep.Phone != onlyPhone {
			continue
		}
		a, ok := byPhone[rep.Phone]
		if !ok {
			a = &agg{reporters: map[string]bool{}}
			byPhone[rep.Phone] = a
			order = append(order, rep.Phone)
		}
		a.count++
		a.reporters[rep.Reporter] = true
		a.latest = rep
	}

	out := []map[string]any{}
	for _, phone := range order {
		a := byPhone[phone]
		if a.count < minReports {
			continue
		}
		reporters := []string{}
		for id := range a.reporters {
			reporters = append(reporters, id)
		}
		out = append(out, map[string]any{
			"phone_number": phone, "spam_count": a.count, "unique_reporters": len(a.reporters),
			"reported_by_users": reporters, "latest_report_date": a.latest.At.UTC().Format(time.RFC3339),
			"latest_description": a.latest.Description,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) handleRecent(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	if typ != "" && typ != "call" && typ != "message" && typ != "spam_report" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid interaction type. Must be: call, message, or spam_report"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": 1, "next": nil, "previous": nil,
		"results": []map[string]any{{
			"id": "int-1", "receiver_phone": "+14155550123", "interaction_type": "call",
			"metadata": map[string]any{}, "created_at": "2026-10-18T09:30:00Z",
		}},
	})
}

func (f *FakeAPI) handleLogInteraction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ReceiverPhone   string         `json:"receiver_phone"`
		InteractionType string         `json:"interaction_type"`
		Metadata        map[string]any `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "malformed body"})
		return
	}
	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("int-%d", f.nextID)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{
		"id": id, "receiver_phone": in.ReceiverPhone, "interaction_type": in.InteractionType,
		"metadata": in.Metadata, "created_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
