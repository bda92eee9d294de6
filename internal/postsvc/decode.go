package postsvc

import (
	"errors"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/tptin07/blogscout/internal/discovery"
)

var (
	ErrInvalidJSON     = errors.New("response is not valid JSON")
	ErrUnexpectedShape = errors.New("unexpected response shape")
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// decodePage reads {posts: [...], pagination: {total: n}}. Both fields are
// optional; a top-level "total" is accepted when pagination is missing.
func decodePage(body []byte) (discovery.Page, error) {
	if !gjson.ValidBytes(body) {
		return discovery.Page{}, ErrInvalidJSON
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return discovery.Page{}, ErrUnexpectedShape
	}

	page := discovery.Page{Posts: decodePosts(root.Get("posts"))}

	total := root.Get("pagination.total")
	if !total.Exists() {
		total = root.Get("total")
	}
	if n := total.Int(); n > 0 {
		page.Total = int(n)
	}
	return page, nil
}

// decodePopular accepts a bare array or an object wrapping it in "posts".
func decodePopular(body []byte) ([]discovery.Post, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(body)
	switch {
	case root.IsArray():
		return decodePosts(root), nil
	case root.IsObject():
		return decodePosts(firstOf(root, "posts", "data")), nil
	default:
		return nil, ErrUnexpectedShape
	}
}

func decodePosts(r gjson.Result) []discovery.Post {
	if !r.IsArray() {
		return []discovery.Post{}
	}
	items := r.Array()
	posts := make([]discovery.Post, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		posts = append(posts, decodePost(item))
	}
	return posts
}

func decodePost(r gjson.Result) discovery.Post {
	p := discovery.Post{
		ID:          firstOf(r, "id", "_id", "slug").String(),
		Title:       r.Get("title").String(),
		Excerpt:     firstOf(r, "excerpt", "summary").String(),
		Cover:       firstOf(r, "cover", "image", "thumbnail").String(),
		Category:    nameOf(r.Get("category")),
		Author:      nameOf(r.Get("author")),
		ReadMinutes: nonNegative(firstOf(r, "readMinutes", "readTime").Int()),
		ViewCount:   nonNegative(firstOf(r, "viewCount", "views").Int()),
		PublishDate: parseDate(firstOf(r, "publishDate", "publishedAt", "createdAt").String()),
		Tags:        []string{},
	}
	for _, tag := range r.Get("tags").Array() {
		if name := strings.TrimSpace(nameOf(tag)); name != "" {
			p.Tags = append(p.Tags, name)
		}
	}
	return p
}

// firstOf returns the first of the given fields present on r.
func firstOf(r gjson.Result, paths ...string) gjson.Result {
	for _, path := range paths {
		if v := r.Get(path); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// nameOf reads a value that is either a plain string or an object with a
// "name" field, as populated references come back from the service.
func nameOf(r gjson.Result) string {
	if r.IsObject() {
		return r.Get("name").String()
	}
	return r.String()
}

func nonNegative(n int64) int {
	if n < 0 {
		return 0
	}
	return int(n)
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
