package postsvc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tptin07/blogscout/internal/config"
	"github.com/tptin07/blogscout/internal/discovery"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 2*time.Second, "blogscout-test/1.0")
}

func TestNewClient(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Service.BaseURL = "http://example.com/api/"

	c, err := NewClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api", c.baseURL)
	assert.Equal(t, cfg.Service.UserAgent, c.userAgent)
	assert.Equal(t, cfg.Service.Timeout, c.client.Timeout)
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	cfg := config.TestConfig()

	cfg.Service.BaseURL = "ftp://example.com/api"
	_, err := NewClient(cfg)
	assert.ErrorContains(t, err, "invalid service URL")

	cfg.Service.BaseURL = "http://localhost:5000/api"
	cfg.Service.AllowLocal = false
	_, err = NewClient(cfg)
	assert.ErrorContains(t, err, "localhost")

	cfg.Service.AllowLocal = true
	c, err := NewClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", c.baseURL)
}

func TestNewDefaults(t *testing.T) {
	c := New("http://example.com", 0, "")
	assert.Equal(t, defaultTimeout, c.client.Timeout)
	assert.Equal(t, defaultUserAgent, c.userAgent)
}

func TestQueryPostsRequest(t *testing.T) {
	var got *http.Request
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"posts": [], "pagination": {"total": 0}}`))
	})

	_, err := c.QueryPosts(context.Background(), discovery.Params{
		Q:        "vitamin-c",
		Category: discovery.CategoryVitamins,
		Tag:      "vitamin-c",
		Sort:     discovery.SortPopular,
		Page:     1,
		Limit:    200,
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "/posts", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "vitamin-c", q.Get("q"))
	assert.Equal(t, "Vitamin & Khoáng chất", q.Get("cat"))
	assert.Equal(t, "vitamin-c", q.Get("tag"))
	assert.Equal(t, "popular", q.Get("sort"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "200", q.Get("limit"))
	assert.Equal(t, "blogscout-test/1.0", got.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestQueryPostsDecodes(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"posts": [
				{
					"_id": "65f1",
					"title": "Vitamin C và hệ miễn dịch",
					"excerpt": "Tóm tắt",
					"cover": "/img/vitc.jpg",
					"category": "Vitamin & Khoáng chất",
					"tags": ["vitamin-c", "miễn dịch", ""],
					"author": {"name": "DS. Lan"},
					"publishDate": "2024-03-01T08:00:00Z",
					"readMinutes": 5,
					"viewCount": 1200
				},
				{"id": 7, "title": "Không có ảnh", "viewCount": -4},
				"not an object"
			],
			"pagination": {"total": 42}
		}`))
	})

	page, err := c.QueryPosts(context.Background(), discovery.Params{Page: 1, Limit: 200})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, 42, page.Total)

	first := page.Posts[0]
	assert.Equal(t, "65f1", first.ID)
	assert.Equal(t, "Vitamin C và hệ miễn dịch", first.Title)
	assert.Equal(t, "/img/vitc.jpg", first.Cover)
	assert.Equal(t, "Vitamin & Khoáng chất", first.Category)
	assert.Equal(t, []string{"vitamin-c", "miễn dịch"}, first.Tags)
	assert.Equal(t, "DS. Lan", first.Author)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), first.PublishDate)
	assert.Equal(t, 5, first.ReadMinutes)
	assert.Equal(t, 1200, first.ViewCount)

	second := page.Posts[1]
	assert.Equal(t, "7", second.ID)
	assert.Equal(t, "", second.Cover)
	assert.Equal(t, "/img/fallback.png", second.CoverOr("/img/fallback.png"))
	assert.Equal(t, 0, second.ViewCount)
	assert.Empty(t, second.Tags)
	assert.True(t, second.PublishDate.IsZero())
}

func TestQueryPostsMalformed(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   error
		wantTotal int
		wantPosts int
	}{
		{"missing everything", `{}`, nil, 0, 0},
		{"missing total", `{"posts": [{"id": "a"}]}`, nil, 0, 1},
		{"top-level total", `{"posts": [], "total": 12}`, nil, 12, 0},
		{"posts not an array", `{"posts": {"id": "a"}, "pagination": {"total": 3}}`, nil, 3, 0},
		{"negative total", `{"posts": [], "pagination": {"total": -1}}`, nil, 0, 0},
		{"not json", `<html>oops</html>`, ErrInvalidJSON, 0, 0},
		{"array root", `[]`, ErrUnexpectedShape, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			page, err := c.QueryPosts(context.Background(), discovery.Params{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, page.Posts)
			assert.Len(t, page.Posts, tt.wantPosts)
			assert.Equal(t, tt.wantTotal, page.Total)
		})
	}
}

func TestQueryPostsHTTPError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	_, err := c.QueryPosts(context.Background(), discovery.Params{})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Contains(t, err.Error(), "503")
}

func TestQueryPostsContextCanceled(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.QueryPosts(ctx, discovery.Params{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPopularPosts(t *testing.T) {
	var count string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/popular", r.URL.Path)
		count = r.URL.Query().Get("count")
		_, _ = w.Write([]byte(`[
			{"id": "a", "title": "A", "viewCount": 900},
			{"id": "b", "title": "B", "viewCount": 800},
			{"id": "c", "title": "C", "viewCount": 700}
		]`))
	})

	posts, err := c.PopularPosts(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "2", count)
	require.Len(t, posts, 2)
	assert.Equal(t, "a", posts[0].ID)
	assert.Equal(t, 800, posts[1].ViewCount)
}

func TestPopularPostsWrapped(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"posts": [{"id": "a", "title": "A", "viewCount": 3}]}`))
	})

	posts, err := c.PopularPosts(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "A", posts[0].Title)
}

func TestPopularPostsErrors(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"nope"`))
	})
	_, err := c.PopularPosts(context.Background(), 6)
	assert.ErrorIs(t, err, ErrUnexpectedShape)

	c = newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err = c.PopularPosts(context.Background(), 6)
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), parseDate("2024-01-02"))
	assert.True(t, parseDate("yesterday").IsZero())
	assert.True(t, parseDate("").IsZero())
}
