package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/testutil"
)

const (
	testPhone    = "+15551234567"
	testPassword = "hunter2"
)

type result struct {
	out string
	err string
}

// resetFlags restores every flag to its default so commands do not leak
// state between runs.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) (result, error) {
	t.Helper()
	resetFlags(rootCmd)

	if args == nil {
		args = []string{}
	}

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return result{out: out.String(), err: errOut.String()}, err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	res, err := run(t, stdin, args...)
	require.NoError(t, err, "stderr: %s", res.err)
	return res.out
}

func setup(t *testing.T) *testutil.FakeAPI {
	t.Helper()
	fake := testutil.NewFakeAPI(t)
	fake.AddUser(testPhone, testPassword, "Ada", "Lovelace")
	testutil.TempHome(t, testutil.ConfigFor(fake.BaseURL()))
	return fake
}

func login(t *testing.T) {
	t.Helper()
	out := mustRun(t, testPassword+"\n", "login", testPhone)
	require.Contains(t, out, "Logged in as Ada Lovelace ("+testPhone+")")
}

func TestLoginWhoamiLogout(t *testing.T) {
	setup(t)
	login(t)

	out := mustRun(t, "", "whoami")
	require.Contains(t, out, "Name:   Ada Lovelace")
	require.Contains(t, out, "Phone:  "+testPhone)
	require.Contains(t, out, "expires in")

	require.Contains(t, mustRun(t, "", "logout"), "Logged out.")

	_, err := run(t, "", "whoami")
	require.ErrorIs(t, err, controller.ErrNoSession)
	require.Contains(t, mustRun(t, "", "logout"), "Not logged in.")
}

func TestLoginPromptsForPhone(t *testing.T) {
	setup(t)

	res, err := run(t, testPhone+"\n"+testPassword+"\n", "login")
	require.NoError(t, err)
	require.Contains(t, res.err, "Phone number: ")
	require.Contains(t, res.err, "Password: ")
	require.Contains(t, res.out, "Logged in as")
}

func TestLoginWrongPassword(t *testing.T) {
	setup(t)

	_, err := run(t, "nope\n", "login", testPhone)

	var rejected *api.AuthRejected
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "Invalid credentials", describe(err))
}

func TestSignup(t *testing.T) {
	setup(t)

	out := mustRun(t, "cobol59\n", "signup", "(555) 765-4321", "--first-name", "Grace", "--last-name", "Hopper")

	require.Contains(t, out, "Account created. Logged in as Grace Hopper (+15557654321)")
}

func TestSignupShortPasswordIsRejectedLocally(t *testing.T) {
	fake := setup(t)

	_, err := run(t, "abc\n", "signup", "+15557654321", "--first-name", "Grace")

	require.True(t, api.IsValidation(err))
	require.Empty(t, fake.CallsTo("/user/signup"))
}

func TestCommandsRequireLogin(t *testing.T) {
	fake := setup(t)

	for _, args := range [][]string{
		{"dashboard"},
		{"search", "Ada"},
		{"contacts"},
		{"spam", "stats"},
		{"interactions", "recent"},
	} {
		_, err := run(t, "", args...)
		require.ErrorIs(t, err, controller.ErrNoSession, "%v", args)
		require.Contains(t, describe(err), "ringcheck login")
	}
	require.Empty(t, fake.Calls())
}

func TestDashboard(t *testing.T) {
	setup(t)
	login(t)

	out := mustRun(t, "", "dashboard")

	require.Contains(t, out, "Welcome back, Ada Lovelace")
	require.Contains(t, out, "Priya Shah")
}

func TestSearch(t *testing.T) {
	fake := setup(t)
	login(t)

	out := mustRun(t, "", "search", "Ada", "--page", "1")

	require.Contains(t, out, "Ada Lovelace")
	calls := fake.CallsTo("/search")
	require.Len(t, calls, 1)
	require.Contains(t, calls[0].Query, "q=Ada")
}

func TestContactsAddAndList(t *testing.T) {
	setup(t)
	login(t)

	out := mustRun(t, "", "contacts", "add", "Priya", "415 555 0123", "--last-name", "Shah")
	require.Contains(t, out, "Added contact Priya Shah (+14155550123)")

	out = mustRun(t, "", "contacts", "list")
	require.Contains(t, out, "Priya Shah")
	require.Contains(t, out, "+14155550123")
}

func TestSpamReportAndStats(t *testing.T) {
	fake := setup(t)
	login(t)

	out := mustRun(t, "", "spam", "report", "415 555 0199", "-d", "robocall")
	require.Contains(t, out, "Reported +14155550199 as spam (1 report(s) on record)")

	out = mustRun(t, "", "spam", "stats", "--min-reports", "1", "--days", "7")
	require.Contains(t, out, "+14155550199")
	require.Contains(t, out, "robocall")
	require.Contains(t, out, "last 7 days")

	calls := fake.CallsTo("/interactions/spam-stats")
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	require.Contains(t, last.Query, "min_reports=1")
	require.Contains(t, last.Query, "start_date=")
}

func TestInteractions(t *testing.T) {
	fake := setup(t)
	login(t)

	out := mustRun(t, "", "interactions", "log", "+14155550123", "--type", "message")
	require.Contains(t, out, "Logged Message to +14155550123")

	out = mustRun(t, "", "interactions", "recent")
	require.Contains(t, out, "+14155550123")
	for _, c := range fake.CallsTo("/interactions/recent") {
		require.NotContains(t, c.Query, "type=")
	}

	_, err := run(t, "", "interactions", "recent", "--type", "video")
	require.True(t, api.IsValidation(err))
}

func TestExpiredSessionIsReported(t *testing.T) {
	fake := setup(t)
	login(t)
	fake.ExpireTokens()

	res, err := run(t, "", "dashboard")

	require.ErrorIs(t, err, api.ErrAuthExpired)
	require.Contains(t, res.err, "Your session expired")
	require.Equal(t, 1, strings.Count(res.err, "Your session expired"))

	_, err = run(t, "", "whoami")
	require.ErrorIs(t, err, controller.ErrNoSession)
}

func TestHistory(t *testing.T) {
	setup(t)
	login(t)
	mustRun(t, "", "logout")

	out := mustRun(t, "", "history")

	require.Contains(t, out, "login_succeeded")
	require.Contains(t, out, "logout")
	require.Contains(t, out, "phone="+testPhone)
}

func TestConfigInitAndShow(t *testing.T) {
	dir := testutil.TempHome(t, testutil.EmptyHome())

	out := mustRun(t, "", "config", "init", "--api-url", "https://lookup.example.com/api")
	require.Contains(t, out, filepath.Join(dir, "config.yaml"))
	_, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	_, err = run(t, "", "config", "init")
	require.ErrorContains(t, err, "already exists")

	out = mustRun(t, "", "config", "show")
	require.Contains(t, out, "base_url: https://lookup.example.com/api")
}

func TestConfigShowAppliesEnvOverride(t *testing.T) {
	testutil.TempHome(t, testutil.EmptyHome())
	t.Setenv("RINGCHECK_API_URL", "http://10.0.0.2:8000/api")

	out := mustRun(t, "", "config", "show")

	require.Contains(t, out, "base_url: http://10.0.0.2:8000/api")
}

func TestVersion(t *testing.T) {
	testutil.TempHome(t, testutil.EmptyHome())
	require.Contains(t, mustRun(t, "", "version"), "version dev")
}

func TestRootWithoutTTYShowsHelp(t *testing.T) {
	testutil.TempHome(t, testutil.EmptyHome())

	out := mustRun(t, "")

	require.Contains(t, out, "Usage:")
	require.Contains(t, out, "search")
}
