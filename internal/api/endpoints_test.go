package api_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ringcheck/ringcheck/internal/api"
)

type recordedRequest struct {
	method string
	path   string
	query  url.Values
	body   any
}

// stubRequester records requests and answers with nothing.
type stubRequester struct {
	calls []recordedRequest
	err   error
}

func (s *stubRequester) AuthenticatedRequest(_ context.Context, method, path string, query url.Values, body, _ any) error {
	s.calls = append(s.calls, recordedRequest{method, path, query, body})
	return s.err
}

func newEndpoints() (api.Endpoints, *stubRequester) {
	stub := &stubRequester{}
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	return api.Endpoints{R: stub, Region: "IN", Now: func() time.Time { return now }}, stub
}

func TestSearchRequiresQuery(t *testing.T) {
	e, stub := newEndpoints()

	_, err := e.Search(context.Background(), "   ", 1)

	require.True(t, api.IsValidation(err))
	require.Empty(t, stub.calls)
}

func TestSearchPagination(t *testing.T) {
	e, stub := newEndpoints()

	_, err := e.Search(context.Background(), " ada ", 1)
	require.NoError(t, err)
	_, err = e.Search(context.Background(), "ada", 3)
	require.NoError(t, err)

	require.Len(t, stub.calls, 2)
	require.Equal(t, "/search", stub.calls[0].path)
	require.Equal(t, "q=ada", stub.calls[0].query.Encode())
	require.Equal(t, "page=3&q=ada", stub.calls[1].query.Encode())
}

func TestAddContactNormalizesPhone(t *testing.T) {
	e, stub := newEndpoints()

	_, err := e.AddContact(context.Background(), api.NewContact{FirstName: " Ravi ", PhoneNumber: "98765 43210"})
	require.NoError(t, err)

	require.Len(t, stub.calls, 1)
	require.Equal(t, http.MethodPost, stub.calls[0].method)
	body := stub.calls[0].body.(api.NewContact)
	require.Equal(t, "Ravi", body.FirstName)
	require.Equal(t, "+919876543210", body.PhoneNumber)
}

func TestAddContactValidation(t *testing.T) {
	e, stub := newEndpoints()

	_, err := e.AddContact(context.Background(), api.NewContact{PhoneNumber: "+919876543210"})
	require.True(t, api.IsValidation(err))

	_, err = e.AddContact(context.Background(), api.NewContact{FirstName: "Ravi"})
	require.True(t, api.IsValidation(err))

	require.Empty(t, stub.calls)
}

func TestTopContactsLimit(t *testing.T) {
	e, stub := newEndpoints()

	_, err := e.TopContacts(context.Background(), 10)
	require.NoError(t, err)
	_, err = e.TopContacts(context.Background(), 0)
	require.NoError(t, err)

	require.Equal(t, "limit=10", stub.calls[0].query.Encode())
	require.Nil(t, stub.calls[1].query)
}

func TestSpamStatsFilter(t *testing.T) {
	e, stub := newEndpoints()

	_, err := e.SpamStats(context.Background(), api.SpamFilter{MinReports: 3, Days: 7, PhoneNumber: "9876543210"})
	require.NoError(t, err)

	q := stub.calls[0].query
	require.Equal(t, "3", q.Get("min_reports"))
	require.Equal(t, "2026-10-12", q.Get("start_date"))
	require.Equal(t, "+919876543210", q.Get("phone_number"))
}

func TestSpamFilterStartDateWinsOverDays(t *testing.T) {
	now := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	q := api.SpamFilter{Days: 30, StartDate: "2025-12-01", EndDate: "2025-12-31"}.Query(now)

	require.Equal(t, "2025-12-01", q.Get("start_date"))
	require.Equal(t, "2025-12-31", q.Get("end_date"))
	require.Empty(t, q.Get("min_reports"))

	q = api.SpamFilter{Days: 5}.Query(now)
	require.Equal(t, "2025-12-29", q.Get("start_date"))
}

func TestRecentInteractionsTypeFilter(t *testing.T) {
	e, stub := newEndpoints()

	_, err := e.RecentInteractions(context.Background(), "fax", 1)
	require.True(t, api.IsValidation(err))
	require.Empty(t, stub.calls)

	_, err = e.RecentInteractions(context.Background(), api.InteractionCall, 2)
	require.NoError(t, err)
	require.Equal(t, "page=2&type=call", stub.calls[0].query.Encode())
}

func TestLogInteraction(t *testing.T) {
	e, stub := newEndpoints()

	_, err := e.LogInteraction(context.Background(), api.NewInteraction{ReceiverPhone: "+919876543210", InteractionType: "visit"})
	require.True(t, api.IsValidation(err))

	_, err = e.LogInteraction(context.Background(), api.NewInteraction{ReceiverPhone: "9876543210", InteractionType: api.InteractionMessage})
	require.NoError(t, err)
	require.Equal(t, "/interaction", stub.calls[0].path)
	require.Equal(t, "+919876543210", stub.calls[0].body.(api.NewInteraction).ReceiverPhone)
}

func TestEndpointsPropagateRequesterError(t *testing.T) {
	e, stub := newEndpoints()
	stub.err = api.ErrAuthExpired

	_, err := e.Dashboard(context.Background())
	require.ErrorIs(t, err, api.ErrAuthExpired)

	_, err = e.ReportSpam(context.Background(), api.SpamReport{PhoneNumber: "+919876543210"})
	require.ErrorIs(t, err, api.ErrAuthExpired)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw    string
		region string
		want   string
	}{
		{"+1 (555) 123-4567", "IN", "+15551234567"},
		{"98765-43210", "IN", "+919876543210"},
		{"5551234567", "US", "+15551234567"},
	}
	for _, tt := range tests {
		got, err := api.NormalizePhone("phone", tt.raw, tt.region)
		require.NoError(t, err, tt.raw)
		require.Equal(t, tt.want, got)
	}

	_, err := api.NormalizePhone("phone", "", "IN")
	require.True(t, api.IsValidation(err))
	_, err = api.NormalizePhone("phone", "call me", "IN")
	require.True(t, api.IsValidation(err))
}
