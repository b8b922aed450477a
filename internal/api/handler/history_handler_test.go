package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusmarket/chat-service/internal/core/domain"
)

type stubMessageRepo struct {
	listFn func(ctx context.Context, listingID int64, limit int) ([]*domain.Message, error)
}

func (s *stubMessageRepo) Create(context.Context, *domain.Message) error { return nil }

func (s *stubMessageRepo) ListByListing(ctx context.Context, listingID int64, limit int) ([]*domain.Message, error) {
	return s.listFn(ctx, listingID, limit)
}

type stubListingDir struct {
	listings map[int64]*domain.Listing
}

func (s *stubListingDir) FindByID(_ context.Context, id int64) (*domain.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return l, nil
}

type stubUserDir struct {
	byID map[int64]*domain.User
}

func (s *stubUserDir) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserDir) FindByIDs(_ context.Context, ids []int64) (map[int64]*domain.User, error) {
	out := make(map[int64]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func historyContext(e *echo.Echo, target string, id string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestHistoryHandler_List_JoinsSenderEmails(t *testing.T) {
	e := echo.New()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := &stubMessageRepo{
		listFn: func(_ context.Context, listingID int64, limit int) ([]*domain.Message, error) {
			if listingID != 42 {
				t.Fatalf("unexpected listing id: %d", listingID)
			}
			return []*domain.Message{
				{ID: "m1", SenderID: 1, ListingID: 42, Body: "is this available?", Timestamp: ts},
				{ID: "m2", SenderID: 2, ListingID: 42, Body: "yes", Timestamp: ts.Add(time.Minute)},
			}, nil
		},
	}
	listings := &stubListingDir{listings: map[int64]*domain.Listing{42: {ID: 42}}}
	users := &stubUserDir{byID: map[int64]*domain.User{
		1: {ID: 1, Email: "buyer@example.com"},
		2: {ID: 2, Email: "seller@example.com"},
	}}
	handler := NewHistoryHandler(messages, listings, users, 200)

	c, rec := historyContext(e, "/listings/42/messages", "42")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ListingID != 42 || len(resp.Messages) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	first := resp.Messages[0]
	if first.ID != "m1" || first.SenderEmail != "buyer@example.com" || first.Message != "is this available?" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if resp.Messages[1].SenderEmail != "seller@example.com" {
		t.Fatalf("unexpected second item: %+v", resp.Messages[1])
	}
}

func TestHistoryHandler_List_UnknownListing(t *testing.T) {
	e := echo.New()
	handler := NewHistoryHandler(
		&stubMessageRepo{listFn: func(context.Context, int64, int) ([]*domain.Message, error) {
			t.Fatalf("repo must not be queried for an unknown listing")
			return nil, nil
		}},
		&stubListingDir{listings: map[int64]*domain.Listing{}},
		&stubUserDir{},
		200,
	)

	c, _ := historyContext(e, "/listings/99/messages", "99")
	if err := handler.List(c); err != domain.ErrListingNotFound {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestHistoryHandler_List_InvalidID(t *testing.T) {
	e := echo.New()
	handler := NewHistoryHandler(&stubMessageRepo{}, &stubListingDir{}, &stubUserDir{}, 200)

	for _, id := range []string{"abc", "0", "-5"} {
		c, _ := historyContext(e, "/listings/"+id+"/messages", id)
		err := handler.List(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400, got %v", id, err)
		}
	}
}

func TestHistoryHandler_List_LimitCapped(t *testing.T) {
	e := echo.New()
	var gotLimit int
	messages := &stubMessageRepo{
		listFn: func(_ context.Context, _ int64, limit int) ([]*domain.Message, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	handler := NewHistoryHandler(messages,
		&stubListingDir{listings: map[int64]*domain.Listing{42: {ID: 42}}},
		&stubUserDir{}, 200)

	cases := []struct {
		query string
		want  int
	}{
		{"", 200},         // default
		{"?limit=50", 50}, // below cap
		{"?limit=5000", 200},
		{"?limit=junk", 200},
	}
	for _, tc := range cases {
		c, rec := historyContext(e, "/listings/42/messages"+tc.query, "42")
		if err := handler.List(c); err != nil {
			t.Fatalf("query %q: handler error: %v", tc.query, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("query %q: expected 200, got %d", tc.query, rec.Code)
		}
		if gotLimit != tc.want {
			t.Fatalf("query %q: expected limit %d, got %d", tc.query, tc.want, gotLimit)
		}
	}
}

func TestHistoryHandler_List_EmptyHistory(t *testing.T) {
	e := echo.New()
	handler := NewHistoryHandler(
		&stubMessageRepo{listFn: func(context.Context, int64, int) ([]*domain.Message, error) {
			return nil, nil
		}},
		&stubListingDir{listings: map[int64]*domain.Listing{42: {ID: 42}}},
		&stubUserDir{}, 200)

	c, rec := historyContext(e, "/listings/42/messages", "42")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Messages == nil || len(resp.Messages) != 0 {
		t.Fatalf("expected empty (non-null) messages array, got %+v", resp.Messages)
	}
}
