package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/band-manager/internal/auth"
	"github.com/iliyamo/band-manager/internal/model"
	"github.com/iliyamo/band-manager/internal/queue"
	"github.com/iliyamo/band-manager/internal/repository"
)

var (
	errStore = errors.New("store down")
	fixedNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
)

func clock() time.Time { return fixedNow }

func str(s string) *string { return &s }

type fakeShows struct {
	mu    sync.Mutex
	shows []model.Show
	err   error
}

func (f *fakeShows) Create(_ context.Context, s *model.Show) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	s.ID = uint64(len(f.shows) + 1)
	s.CreatedAt, s.UpdatedAt = fixedNow, fixedNow
	f.shows = append(f.shows, *s)
	return nil
}

func (f *fakeShows) GetByID(_ context.Context, id uint64) (*model.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.shows {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrShowNotFound
}

func (f *fakeShows) ListAll(context.Context) ([]model.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Show{}, f.shows...), nil
}

func (f *fakeShows) Update(_ context.Context, s *model.Show) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.shows {
		if f.shows[i].ID == s.ID {
			f.shows[i] = *s
			return nil
		}
	}
	return repository.ErrShowNotFound
}

type fakeEvents struct {
	events []queue.ShowChangedEvent
	err    error
}

func (f *fakeEvents) PublishShowChanged(_ context.Context, ev queue.ShowChangedEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

type fakeCache struct{ invalidations int }

func (f *fakeCache) Invalidate(context.Context) { f.invalidations++ }

type fakeUsers struct {
	byID map[uint64]model.User
	err  error
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdateDisplayName(_ context.Context, id uint64, name string) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.DisplayName = name
	f.byID[id] = u
	return nil
}

type fakeSessions struct {
	live map[string]uint64
	err  error
}

func (f *fakeSessions) Store(_ context.Context, userID uint64, hash string, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.live[hash] = userID
	return nil
}

func (f *fakeSessions) Revoke(_ context.Context, hash string) error {
	delete(f.live, hash)
	return nil
}

func (f *fakeSessions) RevokeAllForUser(_ context.Context, userID uint64) error {
	for h, uid := range f.live {
		if uid == userID {
			delete(f.live, h)
		}
	}
	return nil
}

type fakeExpenses struct {
	items []model.Expense
	err   error
}

func (f *fakeExpenses) Create(_ context.Context, e *model.Expense) error {
	if f.err != nil {
		return f.err
	}
	e.ID = uint64(len(f.items) + 1)
	f.items = append(f.items, *e)
	return nil
}

func (f *fakeExpenses) List(_ context.Context, from, to *time.Time) ([]model.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Expense{}
	for _, e := range f.items {
		if (from == nil || !e.SpentOn.Before(*from)) && (to == nil || !e.SpentOn.After(*to)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenses) Total(ctx context.Context, from, to *time.Time) (int64, error) {
	items, err := f.List(ctx, from, to)
	var total int64
	for _, e := range items {
		total += e.Amount
	}
	return total, err
}

var (
	adminSession = auth.ForUser(model.User{ID: 1, Username: "lead", DisplayName: "Lead", Role: model.RoleAdmin}, "admin-hash")
	// booker may add shows but not see money
	bookerSession = auth.ForUser(model.User{ID: 2, Username: "drums", DisplayName: "Drums", Role: model.RoleMember, CanAddShows: true}, "booker-hash")
	// treasurer sees money
	treasurerSession = auth.ForUser(model.User{ID: 3, Username: "bass", DisplayName: "Bass", Role: model.RoleMember, CanViewAmounts: true, CanEditName: true}, "treasurer-hash")
)

// newCtx builds an echo context for a direct handler call.  A zero
// session leaves the request unauthenticated.
func newCtx(method, target, body string, s *auth.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if s != nil {
		auth.Set(c, *s)
	}
	return c, rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}
