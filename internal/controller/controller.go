package controller

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/config"
	"github.com/ringcheck/ringcheck/internal/log"
	"github.com/ringcheck/ringcheck/internal/session"
)

// Ticket tags the load started by one activation.
type Ticket struct {
	View View
	Seq  uint64
}

// NeedsLoad reports whether activating t.View fetches data.
func (t Ticket) NeedsLoad() bool {
	return t.View.RequiresSession()
}

// EventKind classifies controller notifications.
type EventKind int

const (
	ViewChanged EventKind = iota
	SessionExpired
)

// Event is delivered to subscribers after the controller's state changes.
type Event struct {
	Kind EventKind
	View View
}

// Profile is the signup form.
type Profile struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
}

// Options configures a Controller. Client, Store and Location are required.
type Options struct {
	Client   *api.Client
	Store    session.Backend
	Location Location
	Logger   *log.Logger
	Config   *config.Config
	Now      func() time.Time
}

// Controller holds the session and the active view.
// It is safe for concurrent use.
type Controller struct {
	client *api.Client
	store  session.Backend
	loc    Location
	logger *log.Logger
	cfg    *config.Config
	now    func() time.Time
	api    api.Endpoints

	// mutation serializes Login, Signup and Logout.
	mutation sync.Mutex

	mu         sync.Mutex
	sess       *session.Session
	view       View
	seq        uint64
	spamFilter api.SpamFilter
	observers  []func(Event)
}

// New creates a Controller. The session starts anonymous on ViewAuth until
// Start is called.
func New(opts Options) *Controller {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		client: opts.Client,
		store:  opts.Store,
		loc:    opts.Location,
		logger: opts.Logger,
		cfg:    cfg,
		now:    now,
		view:   ViewAuth,
	}
	c.api = api.Endpoints{R: c, Region: cfg.Auth.DefaultRegion, Now: now}
	return c
}

// API exposes the typed endpoints. Every call goes through AuthenticatedRequest.
func (c *Controller) API() api.Endpoints {
	return c.api
}

// Subscribe registers fn for state change notifications. fn must not block.
func (c *Controller) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Controller) notify(ev Event) {
	c.mu.Lock()
	observers := append([]func(Event){}, c.observers...)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(ev)
	}
}

// RestoreSession reads the session from the store. Absent, partial and
// corrupt records all leave the controller anonymous; partial records are
// cleared. The credential is not checked until the API rejects it.
func (c *Controller) RestoreSession() (bool, error) {
	sess, err := session.Load(c.store)
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	if sess == nil {
		if err := session.Clear(c.store); err != nil {
			return false, fmt.Errorf("clear partial session: %w", err)
		}
		return false, nil
	}

	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()

	_ = c.logger.Append(log.LogEvent{Event: log.EventSessionRestored, Phone: sess.User.PhoneNumber})
	return true, nil
}

// Start restores the session and activates the view named by the current
// location, subject to the gate.
func (c *Controller) Start() (Ticket, error) {
	if _, err := c.RestoreSession(); err != nil {
		return Ticket{}, err
	}
	t, _ := c.activate(ResolveLocation(c.loc.Fragment()), true)
	return t, nil
}

// Session returns a copy of the current session, or nil when anonymous.
func (c *Controller) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	cp := *c.sess
	return &cp
}

// Authenticated reports whether a session is held.
func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Valid()
}

// Current returns the ticket of the active view.
func (c *Controller) Current() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Ticket{View: c.view, Seq: c.seq}
}

// ActiveView returns the active view.
func (c *Controller) ActiveView() View {
	return c.Current().View
}

// IsCurrent reports whether t belongs to the latest activation.
func (c *Controller) IsCurrent(t Ticket) bool {
	return c.Current() == t
}

// Navigate activates v, subject to the gate. The returned bool is false
// when v was already active and nothing changed.
func (c *Controller) Navigate(v View) (Ticket, bool) {
	return c.activate(v, false)
}

// OnLocationChange handles a change of the location fragment.
func (c *Controller) OnLocationChange(fragment string) (Ticket, bool) {
	return c.activate(ResolveLocation(fragment), false)
}

// Refresh re-activates the active view so that it loads again.
func (c *Controller) Refresh() Ticket {
	t, _ := c.activate(c.ActiveView(), true)
	return t
}

func (c *Controller) activate(v View, force bool) (Ticket, bool) {
	c.mu.Lock()
	v = EnforceGate(v, c.sess.Valid())
	if v == c.view && !force {
		t := Ticket{View: c.view, Seq: c.seq}
		c.mu.Unlock()
		c.syncLocation()
		return t, false
	}
	c.view = v
	c.seq++
	t := Ticket{View: v, Seq: c.seq}
	c.mu.Unlock()

	_ = c.logger.Append(log.LogEvent{Event: log.EventViewActivated, View: v.Fragment()})
	c.syncLocation()
	// A newer activation reports its own view.
	if c.IsCurrent(t) {
		c.notify(Event{Kind: ViewChanged, View: v})
	}
	return t, true
}

// syncLocation rewrites the location until it names the active view. It
// writes only when the two differ, so a location listener that calls back
// into OnLocationChange settles at once. The active view is re-read on every
// pass because a concurrent activation may have moved it.
func (c *Controller) syncLocation() {
	if c.loc == nil {
		return
	}
	for {
		cur := c.ActiveView()
		if ResolveLocation(c.loc.Fragment()) == cur {
			return
		}
		c.loc.SetFragment(cur.Fragment())
	}
}

// SetSpamFilter changes the filter used by the spam view's load.
func (c *Controller) SetSpamFilter(f api.SpamFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spamFilter = f
}

// SpamFilter returns the spam view's filter.
func (c *Controller) SpamFilter() api.SpamFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spamFilter
}

// Login signs in with a phone number and password and moves to the dashboard.
func (c *Controller) Login(ctx context.Context, phone, password string) (*session.Session, error) {
	if !c.mutation.TryLock() {
		return nil, ErrSessionBusy
	}
	defer c.mutation.Unlock()

	normalized, err := api.NormalizePhone("phone_number", phone, c.cfg.Auth.DefaultRegion)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, &api.ValidationError{Field: "password", Reason: "password is required"}
	}

	resp, err := c.client.Login(ctx, api.LoginRequest{PhoneNumber: normalized, Password: password})
	if err != nil {
		_ = c.logger.Append(log.LogEvent{Event: log.EventLoginFailed, Phone: normalized, Error: err.Error()})
		return nil, err
	}

	sess, err := c.establish(resp)
	if err != nil {
		return nil, err
	}
	_ = c.logger.Append(log.LogEvent{Event: log.EventLoginSucceeded, Phone: sess.User.PhoneNumber})
	c.activate(ViewDashboard, false)
	return sess, nil
}

// Signup validates the profile locally, creates the account and moves to
// the dashboard. Validation failures never reach the network.
func (c *Controller) Signup(ctx context.Context, p Profile, password string) (*session.Session, error) {
	if !c.mutation.TryLock() {
		return nil, ErrSessionBusy
	}
	defer c.mutation.Unlock()

	req, err := c.validateSignup(p, password)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Signup(ctx, req)
	if err != nil {
		_ = c.logger.Append(log.LogEvent{Event: log.EventSignupFailed, Phone: req.PhoneNumber, Error: err.Error()})
		return nil, err
	}

	sess, err := c.establish(resp)
	if err != nil {
		return nil, err
	}
	_ = c.logger.Append(log.LogEvent{Event: log.EventSignupSucceeded, Phone: sess.User.PhoneNumber})
	c.activate(ViewDashboard, false)
	return sess, nil
}

func (c *Controller) validateSignup(p Profile, password string) (api.SignupRequest, error) {
	req := api.SignupRequest{
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Email:     strings.TrimSpace(p.Email),
		Password:  password,
	}
	if req.FirstName == "" {
		return req, &api.ValidationError{Field: "first_name", Reason: "first name is required"}
	}

	phone, err := api.NormalizePhone("phone_number", p.PhoneNumber, c.cfg.Auth.DefaultRegion)
	if err != nil {
		return req, err
	}
	req.PhoneNumber = phone

	if minLen := c.cfg.Auth.PasswordMinLength; utf8.RuneCountInString(password) < minLen {
		return req, &api.ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("password must be at least %d characters", minLen),
		}
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return req, &api.ValidationError{Field: "email", Reason: "not a valid email address"}
		}
	}
	return req, nil
}

// establish persists a new session and makes it current.
func (c *Controller) establish(resp *api.AuthResponse) (*session.Session, error) {
	sess := &session.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := session.Save(c.store, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	c.sess = sess

	cp := *sess
	return &cp, nil
}

// Logout clears the session everywhere and shows ViewAuth.
// Calling it while anonymous only re-forces the view.
func (c *Controller) Logout() error {
	if !c.mutation.TryLock() {
		return ErrSessionBusy
	}
	defer c.mutation.Unlock()

	c.mu.Lock()
	phone := ""
	if c.sess != nil {
		phone = c.sess.User.PhoneNumber
	}
	c.sess = nil
	err := session.Clear(c.store)
	c.mu.Unlock()

	if phone != "" {
		_ = c.logger.Append(log.LogEvent{Event: log.EventLogout, Phone: phone})
	}
	c.activate(ViewAuth, false)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// expire ends sess after the API rejected its credential. It reports false
// when sess is no longer the current session, so a newer login survives a
// late 401 and each session expires at most once.
func (c *Controller) expire(sess *session.Session) bool {
	c.mu.Lock()
	if c.sess != sess {
		c.mu.Unlock()
		return false
	}
	c.sess = nil
	err := session.Clear(c.store)
	c.mu.Unlock()

	ev := log.LogEvent{Event: log.EventAuthExpired, Phone: sess.User.PhoneNumber}
	if err != nil {
		ev.Error = err.Error()
	}
	_ = c.logger.Append(ev)

	c.activate(ViewAuth, false)
	c.notify(Event{Kind: SessionExpired, View: ViewAuth})
	return true
}

// ViewData is what one view load fetched.
type ViewData struct {
	Ticket    Ticket
	Dashboard *api.Dashboard
	Recent    *api.InteractionPage
	Contacts  []api.TopContact
	Spam      []api.SpamStat
	SpamTotal int
}

// Load fetches the data for t's view. A load whose view was left before it
// finished returns ErrStaleView and must not be rendered. An expired
// credential is always reported, even for a stale ticket.
func (c *Controller) Load(ctx context.Context, t Ticket) (*ViewData, error) {
	if !c.IsCurrent(t) {
		return nil, c.stale(t)
	}

	data := &ViewData{Ticket: t}
	var err error
	switch t.View {
	case ViewDashboard:
		data.Dashboard, err = c.api.Dashboard(ctx)
	case ViewSearch:
		data.Recent, err = c.api.RecentInteractions(ctx, "", 1)
	case ViewContacts:
		data.Contacts, err = c.api.TopContacts(ctx, c.cfg.Views.TopContactsLimit)
	case ViewSpam:
		var stats []api.SpamStat
		stats, err = c.api.SpamStats(ctx, c.SpamFilter())
		data.SpamTotal = len(stats)
		if size := c.cfg.Views.SpamPageSize; size > 0 && len(stats) > size {
			stats = stats[:size]
		}
		data.Spam = stats
	}

	if errors.Is(err, api.ErrAuthExpired) {
		return nil, err
	}
	if !c.IsCurrent(t) {
		return nil, c.stale(t)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Search runs a query on behalf of t's view, discarding a late result.
func (c *Controller) Search(ctx context.Context, t Ticket, q string, page int) (*api.SearchPage, error) {
	res, err := c.api.Search(ctx, q, page)
	return guard(c, t, res, err)
}

func guard[T any](c *Controller, t Ticket, v T, err error) (T, error) {
	var zero T
	if errors.Is(err, api.ErrAuthExpired) || api.IsValidation(err) {
		return zero, err
	}
	if !c.IsCurrent(t) {
		return zero, c.stale(t)
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}

func (c *Controller) stale(t Ticket) error {
	_ = c.logger.Append(log.LogEvent{Event: log.EventStaleLoadDropped, View: t.View.Fragment()})
	return ErrStaleView
}
