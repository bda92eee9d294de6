package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgLoading        = "Loading posts…"
	MsgRendering      = "Rendering post…"
	MsgNoResults      = "No posts match these filters"
	MsgLoadFailed     = "Could not load posts"
	MsgPopularFailed  = "Popular posts unavailable"
	MsgFiltersCleared = "Filters cleared"
	MsgNothingToLoad  = "All matching posts are shown"
)

func MsgResultsCount(shown, total int) string {
	if total == 1 {
		return "1 post"
	}
	if shown == total {
		return fmt.Sprintf("%d posts", total)
	}
	return fmt.Sprintf("%d of %d posts", shown, total)
}

func MsgTruncated(fetched, total int) string {
	return fmt.Sprintf("Showing the first %d of %d matches • refine the search to see more", fetched, total)
}

func MsgReadMinutes(n int) string {
	return fmt.Sprintf("%d phút đọc", n)
}

func MsgViews(n int) string {
	if n == 1 {
		return "1 view"
	}
	return fmt.Sprintf("%d views", n)
}

func MsgTagSelected(tag string) string {
	return fmt.Sprintf("Tag '%s'", strings.TrimSpace(tag))
}
