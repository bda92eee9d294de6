package discovery

import (
	"context"
	"time"
)

// Post is a blog article as supplied by the post service. The engine never
// modifies posts.
type Post struct {
	ID          string
	Title       string
	Excerpt     string
	Cover       string
	Category    string
	Tags        []string
	Author      string
	PublishDate time.Time
	ReadMinutes int
	ViewCount   int
}

// CoverOr returns the cover reference, or fallback when the post has none.
func (p Post) CoverOr(fallback string) string {
	if p.Cover == "" {
		return fallback
	}
	return p.Cover
}

// Params is the request sent to the post query service.
type Params struct {
	Q        string
	Category Category
	Tag      string
	Sort     Sort
	Page     int
	Limit    int
}

// Page is a post query response. Total counts every match on the server and
// may exceed len(Posts).
type Page struct {
	Posts []Post
	Total int
}

// PostService is the remote data service backing the blog listing.
type PostService interface {
	QueryPosts(ctx context.Context, params Params) (Page, error)
	PopularPosts(ctx context.Context, count int) ([]Post, error)
}
