package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/band-manager/internal/model"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 20, 0, 0, 0, time.UTC) }

// catalogue is a small band history around fixedNow (2025-06-01).
func catalogue() *fakeShows {
	return &fakeShows{shows: []model.Show{
		{ID: 1, Title: "Jazz Night", City: "Lahore", ShowType: model.TypePublic, TotalAmount: 300, AdvancePayment: 100,
			ShowDate: day(2025, 3, 10), Status: model.StatusCompleted, IsPaid: true, OrganizationName: str("Blue Note")},
		{ID: 2, Title: "Campus Jazz", City: "Karachi", ShowType: model.TypeUniversity, TotalAmount: 700, AdvancePayment: 200,
			ShowDate: day(2025, 9, 1), Status: model.StatusUpcoming, OrganizationName: str("blue note ")},
		{ID: 3, Title: "Wedding", City: "Lahore", ShowType: model.TypePrivate, TotalAmount: 900,
			ShowDate: day(2024, 12, 20), Status: model.StatusCompleted, IsPaid: true},
		{ID: 4, Title: "Rained out", City: "Islamabad", ShowType: model.TypePublic, TotalAmount: 400,
			ShowDate: day(2025, 7, 4), Status: model.StatusCancelled},
		{ID: 5, Title: "Stale status", City: "Lahore", ShowType: model.TypeCorporate, TotalAmount: 100,
			ShowDate: day(2025, 2, 1), Status: model.StatusUpcoming},
	}}
}

type directoryBody struct {
	Range  string `json:"range"`
	Bounds struct {
		From *time.Time `json:"from"`
		To   *time.Time `json:"to"`
	} `json:"bounds"`
	Shows   []showBody `json:"shows"`
	Summary struct {
		TotalShows       int   `json:"totalShows"`
		Paid             int   `json:"paid"`
		Completed        int   `json:"completed"`
		Upcoming         int   `json:"upcoming"`
		Cancelled        int   `json:"cancelled"`
		TotalRevenue     int64 `json:"totalRevenue"`
		StatusMismatches int   `json:"statusMismatches"`
		OrgBreakdown     []struct {
			Label   string     `json:"label"`
			Count   int        `json:"count"`
			Revenue int64      `json:"revenue"`
			Shows   []showBody `json:"shows"`
		} `json:"orgBreakdown"`
	} `json:"summary"`
	AmountsHidden bool `json:"amountsHidden"`
}

func newDirectoryHandler(store *fakeShows) *DirectoryHandler {
	h := NewDirectoryHandler(store, zap.NewNop(), time.UTC)
	h.Now = clock
	return h
}

func TestDirectoryRunsFilters(t *testing.T) {
	h := newDirectoryHandler(catalogue())

	c, rec := newCtx(http.MethodGet, "/api/directory?range=this_year&q=JAZZ", "", &adminSession)
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got directoryBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "this_year", got.Range)
	require.Len(t, got.Shows, 2)
	assert.Equal(t, uint64(2), got.Shows[0].ID, "latest first")
	assert.Equal(t, uint64(1), got.Shows[1].ID)
	assert.Equal(t, 2, got.Summary.TotalShows)
	assert.Equal(t, 1, got.Summary.Completed)
	assert.Equal(t, 1, got.Summary.Upcoming)
	assert.Equal(t, int64(1000), got.Summary.TotalRevenue)
	require.Len(t, got.Summary.OrgBreakdown, 1)
	assert.Equal(t, "Blue Note", got.Summary.OrgBreakdown[0].Label)
	assert.Equal(t, 2, got.Summary.OrgBreakdown[0].Count)
}

func TestDirectoryLifetimeCountsMismatches(t *testing.T) {
	h := newDirectoryHandler(catalogue())
	c, rec := newCtx(http.MethodGet, "/api/directory", "", &adminSession)
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got directoryBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "lifetime", got.Range)
	assert.Nil(t, got.Bounds.From)
	assert.Equal(t, 5, got.Summary.TotalShows)
	assert.Equal(t, 1, got.Summary.Cancelled)
	assert.Equal(t, 1, got.Summary.StatusMismatches)
}

func TestDirectoryCustomRangeFromDatesOnly(t *testing.T) {
	h := newDirectoryHandler(catalogue())
	c, rec := newCtx(http.MethodGet, "/api/directory?from=2024-12-01&to=2024-12-31", "", &adminSession)
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got directoryBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "custom", got.Range)
	require.Len(t, got.Shows, 1)
	assert.Equal(t, "Wedding", got.Shows[0].Title)
}

func TestDirectoryHidesMoney(t *testing.T) {
	h := newDirectoryHandler(catalogue())
	c, rec := newCtx(http.MethodGet, "/api/directory?q=blue", "", &bookerSession)
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got directoryBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.AmountsHidden)
	assert.Zero(t, got.Summary.TotalRevenue)
	require.Len(t, got.Summary.OrgBreakdown, 1)
	assert.Zero(t, got.Summary.OrgBreakdown[0].Revenue)
	for _, s := range got.Summary.OrgBreakdown[0].Shows {
		assert.Zero(t, s.TotalAmount)
	}
	for _, s := range got.Shows {
		assert.Zero(t, s.TotalAmount)
	}
}

func TestDirectoryGroupedShowsRenderLikeTopLevel(t *testing.T) {
	store := &fakeShows{shows: []model.Show{
		{ID: 7, Title: "Lost date", City: "Lahore", ShowType: model.TypePublic, TotalAmount: 500,
			Status: model.StatusUpcoming, OrganizationName: str("Blue Note")},
	}}
	h := newDirectoryHandler(store)

	c, rec := newCtx(http.MethodGet, "/api/directory", "", &bookerSession)
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got directoryBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Shows, 1)
	assert.Nil(t, got.Shows[0].ShowDate)
	require.Len(t, got.Summary.OrgBreakdown, 1)
	require.Len(t, got.Summary.OrgBreakdown[0].Shows, 1)
	nested := got.Summary.OrgBreakdown[0].Shows[0]
	assert.Nil(t, nested.ShowDate)
	assert.True(t, nested.AmountsHidden)
	assert.Zero(t, nested.TotalAmount)
	assert.NotContains(t, rec.Body.String(), "0001-01-01")
	assert.Contains(t, rec.Body.String(), `"contacts":[]`)
}

func TestDirectoryErrors(t *testing.T) {
	h := newDirectoryHandler(catalogue())
	for _, target := range []string{
		"/api/directory?range=fortnight",
		"/api/directory?range=custom&from=2025-13-01",
		"/api/directory?to=yesterday",
	} {
		c, rec := newCtx(http.MethodGet, target, "", &adminSession)
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	h = newDirectoryHandler(&fakeShows{err: errStore})
	c, rec := newCtx(http.MethodGet, "/api/directory", "", &adminSession)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDirectoryEmptyIsOK(t *testing.T) {
	h := newDirectoryHandler(&fakeShows{})
	c, rec := newCtx(http.MethodGet, "/api/directory?q=anything", "", &adminSession)
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"shows":[]`)
	assert.Contains(t, rec.Body.String(), `"typeBreakdown":[]`)
}

func newDashboardHandler(store *fakeShows, expenses *fakeExpenses) *DashboardHandler {
	h := NewDashboardHandler(store, expenses, zap.NewNop(), time.UTC)
	h.Now = clock
	return h
}

func TestAdminStats(t *testing.T) {
	expenses := &fakeExpenses{items: []model.Expense{
		{Title: "Van", Amount: 150, SpentOn: day(2025, 3, 1)},
		{Title: "Strings", Amount: 50, SpentOn: day(2024, 1, 1)},
	}}
	h := newDashboardHandler(catalogue(), expenses)

	c, rec := newCtx(http.MethodGet, "/api/dashboard/stats?range=this_year", "", &adminSession)
	require.NoError(t, h.AdminStats(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Counts struct {
			Total, Upcoming, Completed, Cancelled int
		} `json:"counts"`
		Money struct {
			TotalRevenue  int64 `json:"totalRevenue"`
			TotalExpenses int64 `json:"totalExpenses"`
			NetProfit     int64 `json:"netProfit"`
		} `json:"money"`
		Upcoming []showBody `json:"upcoming"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	// shows 1, 2, 4, 5 fall in 2025; counted by stored status
	assert.Equal(t, 4, got.Counts.Total)
	assert.Equal(t, 2, got.Counts.Upcoming)
	assert.Equal(t, 1, got.Counts.Completed)
	assert.Equal(t, 1, got.Counts.Cancelled)
	assert.Equal(t, int64(1100), got.Money.TotalRevenue)
	assert.Equal(t, int64(150), got.Money.TotalExpenses)
	assert.Equal(t, int64(950), got.Money.NetProfit)
	require.Len(t, got.Upcoming, 1)
	assert.Equal(t, uint64(2), got.Upcoming[0].ID)
}

func TestAdminStatsExpenseFailure(t *testing.T) {
	h := newDashboardHandler(catalogue(), &fakeExpenses{err: errStore})
	c, rec := newCtx(http.MethodGet, "/api/dashboard/stats", "", &adminSession)
	require.NoError(t, h.AdminStats(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMemberDashboard(t *testing.T) {
	h := newDashboardHandler(catalogue(), &fakeExpenses{})

	c, rec := newCtx(http.MethodGet, "/api/member/dashboard", "", &bookerSession)
	require.NoError(t, h.MemberDashboard(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"money"`)
	assert.Contains(t, rec.Body.String(), `"amountsHidden":true`)

	c, rec = newCtx(http.MethodGet, "/api/member/dashboard", "", &treasurerSession)
	require.NoError(t, h.MemberDashboard(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalRevenue":2000`)
	assert.NotContains(t, rec.Body.String(), "amountsHidden")
}

func TestUpdateName(t *testing.T) {
	users := &fakeUsers{byID: map[uint64]model.User{3: {ID: 3, Username: "bass", DisplayName: "Bass"}}}
	cache := &fakeCache{}
	h := NewMemberHandler(users, cache, zap.NewNop())

	for _, body := range []string{`{"displayName":"   "}`, `{"displayName":"` + strings.Repeat("x", 121) + `"}`} {
		c, rec := newCtx(http.MethodPatch, "/api/member/name", body, &treasurerSession)
		require.NoError(t, h.UpdateName(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	c, rec := newCtx(http.MethodPatch, "/api/member/name", `{"displayName":" Bass Player "}`, &treasurerSession)
	require.NoError(t, h.UpdateName(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bass Player", users.byID[3].DisplayName)
	assert.Contains(t, rec.Body.String(), `"displayName":"Bass Player"`)
	assert.Equal(t, 1, cache.invalidations)
}

func TestExpenses(t *testing.T) {
	store := &fakeExpenses{}
	cache := &fakeCache{}
	h := NewExpenseHandler(store, cache, zap.NewNop(), time.UTC)
	h.Now = clock

	for _, body := range []string{
		`{"category":"travel","amount":10,"spentOn":"2025-05-01"}`,
		`{"title":"Van","amount":0,"spentOn":"2025-05-01"}`,
		`{"title":"Van","amount":10,"spentOn":"May 1"}`,
	} {
		c, rec := newCtx(http.MethodPost, "/api/expenses", body, &adminSession)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	c, rec := newCtx(http.MethodPost, "/api/expenses", `{"title":"Van hire","amount":120,"spentOn":"2025-05-01"}`, &adminSession)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.items, 1)
	assert.Equal(t, "general", store.items[0].Category)
	assert.Equal(t, 1, cache.invalidations)

	c, rec = newCtx(http.MethodGet, "/api/expenses?range=this_month", "", &adminSession)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":0`)

	c, rec = newCtx(http.MethodGet, "/api/expenses?range=last_month", "", &adminSession)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":120`)
}
