package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tptin07/blogscout/internal/discovery"
)

type View int

const (
	ViewList View = iota
	ViewSearch
	ViewNavigate
	ViewDetail
)

func (v View) String() string {
	switch v {
	case ViewList:
		return "list"
	case ViewSearch:
		return "search"
	case ViewNavigate:
		return "navigate"
	case ViewDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// postItem adapts a discovery.Post to the bubbles list.
type postItem struct {
	post discovery.Post
}

func (i postItem) Title() string {
	return categoryBadge(i.post.Category) + " " + i.post.Title
}

func (i postItem) Description() string {
	desc := truncateEnd(i.post.Excerpt, 80)

	meta := ""
	if !i.post.PublishDate.IsZero() {
		meta = " • " + i.post.PublishDate.Format("02/01/2006")
	}
	if i.post.ReadMinutes > 0 {
		meta += " • " + MsgReadMinutes(i.post.ReadMinutes)
	}

	return lipgloss.NewStyle().
		Foreground(MutedColor).
		Render(desc) + TimeStyle.Render(meta)
}

func (i postItem) FilterValue() string { return i.post.Title }

type postsFetchedMsg struct {
	seq  uint64
	page discovery.Page
	err  error
}

type popularLoadedMsg struct {
	posts []discovery.Post
	err   error
}

type detailRenderedMsg struct {
	postID  string
	content string
}
