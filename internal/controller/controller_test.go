package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/config"
	"github.com/ringcheck/ringcheck/internal/session"
	"github.com/ringcheck/ringcheck/internal/testutil"
)

const (
	testPhone    = "+15551234567"
	testPassword = "hunter2"
)

type harness struct {
	c     *Controller
	fake  *testutil.FakeAPI
	store *session.MemoryStore
	loc   *MemoryLocation
	cfg   *config.Config
}

func newHarness(t *testing.T, fragment string) *harness {
	t.Helper()
	fake := testutil.NewFakeAPI(t)
	fake.AddUser(testPhone, testPassword, "Ada", "Lovelace")

	cfg := config.DefaultConfig()
	cfg.Auth.DefaultRegion = "US"

	h := &harness{
		fake:  fake,
		store: session.NewMemoryStore(),
		loc:   NewMemoryLocation(fragment),
		cfg:   cfg,
	}
	h.c = New(Options{
		Client:   api.NewClient(fake.BaseURL(), 5*time.Second, nil),
		Store:    h.store,
		Location: h.loc,
		Config:   cfg,
	})
	return h
}

func (h *harness) login(t *testing.T) *session.Session {
	t.Helper()
	sess, err := h.c.Login(context.Background(), testPhone, testPassword)
	require.NoError(t, err)
	return sess
}

func TestFreshClientIsGatedToAuth(t *testing.T) {
	h := newHarness(t, "#dashboard")

	ticket, err := h.c.Start()
	require.NoError(t, err)

	require.Equal(t, ViewAuth, ticket.View)
	require.False(t, h.c.Authenticated())
	require.Equal(t, "auth", h.loc.Fragment())
	require.Empty(t, h.fake.Calls())
}

func TestStartRestoresSession(t *testing.T) {
	h := newHarness(t, "#contacts")
	require.NoError(t, session.Save(h.store, &session.Session{
		AccessToken: "stored-token",
		User:        session.User{ID: "u1", FirstName: "Ada", PhoneNumber: testPhone},
	}))

	ticket, err := h.c.Start()
	require.NoError(t, err)

	require.True(t, h.c.Authenticated())
	require.Equal(t, ViewContacts, ticket.View)
	require.True(t, ticket.NeedsLoad())
	// no request is made to validate the stored token
	require.Empty(t, h.fake.Calls())
}

func TestStartClearsPartialSession(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.store.SetAll(map[string]string{session.KeyAccessToken: "orphan"}))

	ticket, err := h.c.Start()
	require.NoError(t, err)

	require.Equal(t, ViewAuth, ticket.View)
	keys, err := h.store.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestLoginStoresSessionAndShowsDashboard(t *testing.T) {
	h := newHarness(t, "")
	_, err := h.c.Start()
	require.NoError(t, err)

	sess := h.login(t)

	require.Equal(t, testPhone, sess.User.PhoneNumber)
	require.Equal(t, ViewDashboard, h.c.ActiveView())
	require.Equal(t, "dashboard", h.loc.Fragment())
	for _, key := range session.Keys {
		_, ok, err := h.store.Get(key)
		require.NoError(t, err)
		require.True(t, ok, "store is missing %s", key)
	}

	_, err = h.c.API().Dashboard(context.Background())
	require.NoError(t, err)

	calls := h.fake.CallsTo("/dashboard")
	require.Len(t, calls, 1)
	require.Equal(t, "Bearer "+sess.AccessToken, calls[0].Authorization)
	require.NotEmpty(t, calls[0].RequestID)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t, "")
	_, err := h.c.Start()
	require.NoError(t, err)

	_, err = h.c.Login(context.Background(), testPhone, "wrong")

	var rejected *api.AuthRejected
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, http.StatusUnauthorized, rejected.Status)
	require.Equal(t, "Invalid credentials", rejected.Message)
	require.False(t, h.c.Authenticated())
	require.Equal(t, ViewAuth, h.c.ActiveView())
}

func TestLoginFallbackMessage(t *testing.T) {
	h := newHarness(t, "")
	h.fake.FailNext("/user/login", http.StatusBadGateway, "<html>bad gateway</html>")

	_, err := h.c.Login(context.Background(), testPhone, testPassword)

	var rejected *api.AuthRejected
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "Login failed", rejected.Message)
}

func TestLoginRequiresFields(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.c.Login(context.Background(), "", testPassword)
	require.True(t, api.IsValidation(err), "got %v", err)

	_, err = h.c.Login(context.Background(), testPhone, "")
	require.True(t, api.IsValidation(err), "got %v", err)

	require.Empty(t, h.fake.Calls())
}

func TestSignupShortPasswordMakesNoRequest(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.c.Signup(context.Background(), Profile{
		FirstName:   "Grace",
		PhoneNumber: "+15557654321",
	}, "abc")

	var verr *api.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "password", verr.Field)
	require.Empty(t, h.fake.Calls())
	require.False(t, h.c.Authenticated())
}

func TestSignupPasswordPolicyIsConfigurable(t *testing.T) {
	h := newHarness(t, "")
	h.cfg.Auth.PasswordMinLength = 8

	_, err := h.c.Signup(context.Background(), Profile{FirstName: "Grace", PhoneNumber: "+15557654321"}, "hunter2")
	require.True(t, api.IsValidation(err), "got %v", err)
	require.Empty(t, h.fake.Calls())
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		field   string
	}{
		{"missing first name", Profile{PhoneNumber: "+15557654321"}, "first_name"},
		{"missing phone", Profile{FirstName: "Grace"}, "phone_number"},
		{"bad phone", Profile{FirstName: "Grace", PhoneNumber: "not-a-number"}, "phone_number"},
		{"bad email", Profile{FirstName: "Grace", PhoneNumber: "+15557654321", Email: "grace@"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")
			_, err := h.c.Signup(context.Background(), tt.profile, "longenough")

			var verr *api.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.field, verr.Field)
			require.Empty(t, h.fake.Calls())
		})
	}
}

func TestSignupSuccess(t *testing.T) {
	h := newHarness(t, "")
	_, err := h.c.Start()
	require.NoError(t, err)

	sess, err := h.c.Signup(context.Background(), Profile{
		FirstName:   "Grace",
		LastName:    "Hopper",
		PhoneNumber: "(555) 765-4321",
		Email:       "grace@example.com",
	}, "cobol59")
	require.NoError(t, err)

	require.Equal(t, "+15557654321", sess.User.PhoneNumber)
	require.Equal(t, "Grace Hopper", sess.User.DisplayName())
	require.Equal(t, ViewDashboard, h.c.ActiveView())
}

func TestSignupDuplicatePhone(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.c.Signup(context.Background(), Profile{FirstName: "Ada", PhoneNumber: testPhone}, "another1")

	var rejected *api.AuthRejected
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "phone_number: A user with this phone number already exists", rejected.Message)
	require.False(t, h.c.Authenticated())
}

func TestLogoutClearsEverything(t *testing.T) {
	h := newHarness(t, "")
	_, err := h.c.Start()
	require.NoError(t, err)
	h.login(t)
	h.c.Navigate(ViewContacts)

	require.NoError(t, h.c.Logout())

	require.False(t, h.c.Authenticated())
	require.Nil(t, h.c.Session())
	require.Equal(t, ViewAuth, h.c.ActiveView())
	require.Equal(t, "auth", h.loc.Fragment())
	for _, key := range session.Keys {
		_, ok, err := h.store.Get(key)
		require.NoError(t, err)
		require.False(t, ok, "store still holds %s", key)
	}
}

func TestLogoutWhenAnonymousIsNoop(t *testing.T) {
	h := newHarness(t, "#spam")
	_, err := h.c.Start()
	require.NoError(t, err)

	require.NoError(t, h.c.Logout())
	require.NoError(t, h.c.Logout())
	require.Equal(t, ViewAuth, h.c.ActiveView())
	require.Equal(t, "auth", h.loc.Fragment())
}

func TestAuthenticatedRequestWhileAnonymous(t *testing.T) {
	h := newHarness(t, "")

	err := h.c.AuthenticatedRequest(context.Background(), http.MethodGet, "/dashboard", nil, nil, nil)

	require.ErrorIs(t, err, ErrNoSession)
	require.Empty(t, h.fake.Calls())
}

func TestExpiredCredentialLogsOutOnce(t *testing.T) {
	h := newHarness(t, "")
	_, err := h.c.Start()
	require.NoError(t, err)
	h.login(t)

	var mu sync.Mutex
	expired := 0
	h.c.Subscribe(func(ev Event) {
		if ev.Kind == SessionExpired {
			mu.Lock()
			expired++
			mu.Unlock()
		}
	})

	h.fake.ExpireTokens()
	ticket := h.c.Current()
	_, err = h.c.Load(context.Background(), ticket)
	require.ErrorIs(t, err, api.ErrAuthExpired)

	require.False(t, h.c.Authenticated())
	require.Equal(t, ViewAuth, h.c.ActiveView())
	require.Equal(t, "auth", h.loc.Fragment())
	keys, err := h.store.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)

	err = h.c.AuthenticatedRequest(context.Background(), http.MethodGet, "/dashboard", nil, nil, nil)
	require.ErrorIs(t, err, ErrNoSession)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, expired)
}

func TestConcurrentUnauthorizedSurfacesOneExpiry(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	h.fake.ExpireTokens()

	const n = 5
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- h.c.AuthenticatedRequest(context.Background(), http.MethodGet, "/dashboard", nil, nil, nil)
		}()
	}
	wg.Wait()
	close(errs)

	expired := 0
	for err := range errs {
		switch {
		case errors.Is(err, api.ErrAuthExpired):
			expired++
		case errors.Is(err, ErrNoSession):
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	require.Equal(t, 1, expired)
	require.False(t, h.c.Authenticated())
}

func TestLateUnauthorizedKeepsNewerSession(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)

	h.c.mu.Lock()
	old := h.c.sess
	h.c.mu.Unlock()

	require.NoError(t, h.c.Logout())
	h.login(t)

	require.False(t, h.c.expire(old))
	require.True(t, h.c.Authenticated())
	require.Equal(t, ViewDashboard, h.c.ActiveView())
}

func TestRemoteErrorKeepsSession(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	h.fake.FailNext("/dashboard", http.StatusInternalServerError, `{"detail":"database unavailable"}`)

	_, err := h.c.Load(context.Background(), h.c.Current())

	var remote *api.RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, http.StatusInternalServerError, remote.Status)
	require.Equal(t, "database unavailable", remote.Message)
	require.True(t, h.c.Authenticated())
}

func TestMalformedSuccessBodyIsRemoteError(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	h.fake.FailNext("/dashboard", http.StatusOK, `{"user":`)

	_, err := h.c.Load(context.Background(), h.c.Current())

	var remote *api.RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, http.StatusOK, remote.Status)
	require.Equal(t, "malformed response", remote.Message)
	require.True(t, h.c.Authenticated())
}

func TestNetworkFailureIsDistinct(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	h.fake.Server.Close()

	_, err := h.c.Load(context.Background(), h.c.Current())

	require.True(t, api.IsNetwork(err), "got %v", err)
	require.True(t, h.c.Authenticated())
}

func TestStaleSearchLoadIsDiscarded(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	release := h.fake.Hold("/interactions/recent")

	search, changed := h.c.Navigate(ViewSearch)
	require.True(t, changed)

	type result struct {
		data *ViewData
		err  error
	}
	late := make(chan result, 1)
	go func() {
		data, err := h.c.Load(context.Background(), search)
		late <- result{data, err}
	}()
	require.Eventually(t, func() bool {
		return len(h.fake.CallsTo("/interactions/recent")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	contacts, changed := h.c.Navigate(ViewContacts)
	require.True(t, changed)
	data, err := h.c.Load(context.Background(), contacts)
	require.NoError(t, err)
	require.Equal(t, contacts, data.Ticket)

	release()
	r := <-late
	require.ErrorIs(t, r.err, ErrStaleView)
	require.Nil(t, r.data)
	require.Equal(t, ViewContacts, h.c.ActiveView())
}

func TestStaleSearchQueryIsDiscarded(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	search, _ := h.c.Navigate(ViewSearch)

	page, err := h.c.Search(context.Background(), search, "ada", 1)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)

	h.c.Navigate(ViewSpam)
	_, err = h.c.Search(context.Background(), search, "ada", 1)
	require.ErrorIs(t, err, ErrStaleView)
}

func TestActivatingActiveViewIsNoop(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)

	first, changed := h.c.Navigate(ViewContacts)
	require.True(t, changed)
	second, changed := h.c.Navigate(ViewContacts)
	require.False(t, changed)
	require.Equal(t, first, second)

	refreshed := h.c.Refresh()
	require.Equal(t, ViewContacts, refreshed.View)
	require.Greater(t, refreshed.Seq, first.Seq)
	require.False(t, h.c.IsCurrent(first))
}

func TestLocationRoundTripSettles(t *testing.T) {
	h := newHarness(t, "")
	h.loc.OnChange(func(f string) { h.c.OnLocationChange(f) })

	_, err := h.c.Start()
	require.NoError(t, err)
	require.Equal(t, "auth", h.loc.Fragment())
	require.Equal(t, 1, h.loc.Writes())

	h.login(t)
	require.Equal(t, "dashboard", h.loc.Fragment())
	require.Equal(t, 2, h.loc.Writes())

	h.c.Navigate(ViewContacts)
	require.Equal(t, "contacts", h.loc.Fragment())
	require.Equal(t, 3, h.loc.Writes())

	h.loc.SetFragment("#spam")
	require.Equal(t, ViewSpam, h.c.ActiveView())
	require.Equal(t, "#spam", h.loc.Fragment())
	require.Equal(t, 4, h.loc.Writes())

	h.loc.SetFragment("#auth")
	require.Equal(t, ViewDashboard, h.c.ActiveView())
	require.Equal(t, "dashboard", h.loc.Fragment())
}

// gatedLocation holds the first write of one fragment until release is closed.
type gatedLocation struct {
	*MemoryLocation
	hold    string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (l *gatedLocation) SetFragment(fragment string) {
	if fragment == l.hold {
		blocked := false
		l.once.Do(func() { blocked = true })
		if blocked {
			close(l.entered)
			<-l.release
		}
	}
	l.MemoryLocation.SetFragment(fragment)
}

func TestLocationFollowsLatestActivation(t *testing.T) {
	h := newHarness(t, "")
	loc := &gatedLocation{
		MemoryLocation: h.loc,
		hold:           "contacts",
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	h.c.loc = loc
	h.login(t)

	var mu sync.Mutex
	var changes []View
	h.c.Subscribe(func(ev Event) {
		if ev.Kind == ViewChanged {
			mu.Lock()
			changes = append(changes, ev.View)
			mu.Unlock()
		}
	})

	done := make(chan struct{})
	go func() {
		h.c.Navigate(ViewContacts)
		close(done)
	}()
	<-loc.entered

	require.NoError(t, h.c.Logout())
	close(loc.release)
	<-done

	require.Equal(t, ViewAuth, h.c.ActiveView())
	require.Equal(t, ViewAuth, ResolveLocation(h.loc.Fragment()))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []View{ViewAuth}, changes)
}

func TestSessionMutationsAreExclusive(t *testing.T) {
	h := newHarness(t, "")
	release := h.fake.Hold("/user/login")

	done := make(chan error, 1)
	go func() {
		_, err := h.c.Login(context.Background(), testPhone, testPassword)
		done <- err
	}()
	require.Eventually(t, func() bool {
		return len(h.fake.CallsTo("/user/login")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.ErrorIs(t, h.c.Logout(), ErrSessionBusy)
	_, err := h.c.Login(context.Background(), testPhone, testPassword)
	require.ErrorIs(t, err, ErrSessionBusy)
	_, err = h.c.Signup(context.Background(), Profile{FirstName: "X", PhoneNumber: "+15550000000"}, "secret1")
	require.ErrorIs(t, err, ErrSessionBusy)

	release()
	require.NoError(t, <-done)
	require.True(t, h.c.Authenticated())
	require.Len(t, h.fake.CallsTo("/user/login"), 1)
}

func TestLoadDashboard(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)

	data, err := h.c.Load(context.Background(), h.c.Current())
	require.NoError(t, err)
	require.NotNil(t, data.Dashboard)
	require.Equal(t, testPhone, data.Dashboard.User.Phone)
	require.NotEmpty(t, data.Dashboard.ActivityTrend)
}

func TestLoadContactsUsesConfiguredLimit(t *testing.T) {
	h := newHarness(t, "")
	h.cfg.Views.TopContactsLimit = 2
	h.login(t)

	for i := 0; i < 3; i++ {
		_, err := h.c.API().AddContact(context.Background(), api.NewContact{
			FirstName:   fmt.Sprintf("Friend%d", i),
			PhoneNumber: fmt.Sprintf("+1555000100%d", i),
		})
		require.NoError(t, err)
	}

	ticket, _ := h.c.Navigate(ViewContacts)
	data, err := h.c.Load(context.Background(), ticket)
	require.NoError(t, err)
	require.Len(t, data.Contacts, 2)

	calls := h.fake.CallsTo("/interactions/top")
	require.Equal(t, "limit=2", calls[len(calls)-1].Query)
}

func TestLoadSpamTruncatesToPageSize(t *testing.T) {
	h := newHarness(t, "")
	h.cfg.Views.SpamPageSize = 2
	h.login(t)

	for i := 0; i < 3; i++ {
		_, err := h.c.API().ReportSpam(context.Background(), api.SpamReport{
			PhoneNumber: fmt.Sprintf("+1555000200%d", i),
			Description: "robocall",
		})
		require.NoError(t, err)
	}

	ticket, _ := h.c.Navigate(ViewSpam)
	data, err := h.c.Load(context.Background(), ticket)
	require.NoError(t, err)
	require.Len(t, data.Spam, 2)
	require.Equal(t, 3, data.SpamTotal)
}

func TestSpamFilterReachesQuery(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	h.c.SetSpamFilter(api.SpamFilter{MinReports: 2})

	ticket, _ := h.c.Navigate(ViewSpam)
	_, err := h.c.Load(context.Background(), ticket)
	require.NoError(t, err)

	calls := h.fake.CallsTo("/interactions/spam-stats")
	require.Len(t, calls, 1)
	require.Equal(t, "min_reports=2", calls[0].Query)
}
