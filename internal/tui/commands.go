package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tptin07/blogscout/internal/debuglog"
	"github.com/tptin07/blogscout/internal/discovery"
)

// fetchPosts runs one issued fetch. The result always comes back as a
// postsFetchedMsg carrying the fetch's seq, whether or not it is still wanted.
func (a *App) fetchPosts(f discovery.Fetch) tea.Cmd {
	svc := a.service
	timeout := a.config.Service.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		page, err := svc.QueryPosts(ctx, f.Params)
		return postsFetchedMsg{seq: f.Seq, page: page, err: wrapErr("query posts", err)}
	}
}

func (a *App) loadPopular(count int) tea.Cmd {
	svc := a.service
	timeout := a.config.Service.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		posts, err := svc.PopularPosts(ctx, count)
		return popularLoadedMsg{posts: posts, err: wrapErr("popular posts", err)}
	}
}

// renderDetail renders a post as markdown. Tags are numbered so they can be
// selected with the digit keys. The renderer is resolved before the command
// runs since getRenderer reads and caches App fields.
func (a *App) renderDetail(post discovery.Post) tea.Cmd {
	markdown := a.detailMarkdown(post)
	r, err := a.getRenderer()
	if err != nil {
		content := "Error initializing renderer: " + err.Error()
		return func() tea.Msg {
			return detailRenderedMsg{postID: post.ID, content: content}
		}
	}
	return func() tea.Msg {
		rendered, err := r.Render(markdown)
		if err != nil {
			debuglog.Warnf("render post %s: %v", post.ID, err)
			return detailRenderedMsg{postID: post.ID, content: markdown}
		}
		return detailRenderedMsg{postID: post.ID, content: rendered}
	}
}

func (a *App) detailMarkdown(post discovery.Post) string {
	var content strings.Builder
	content.WriteString(fmt.Sprintf("# %s\n\n", post.Title))

	var meta []string
	if post.Category != "" {
		meta = append(meta, "**"+post.Category+"**")
	}
	if post.Author != "" {
		meta = append(meta, post.Author)
	}
	if !post.PublishDate.IsZero() {
		meta = append(meta, post.PublishDate.Format(time.DateOnly))
	}
	if post.ReadMinutes > 0 {
		meta = append(meta, MsgReadMinutes(post.ReadMinutes))
	}
	meta = append(meta, MsgViews(post.ViewCount))
	content.WriteString("*" + strings.Join(meta, " • ") + "*\n\n")

	content.WriteString(fmt.Sprintf("![cover](%s)\n\n", post.CoverOr(a.config.UI.FallbackCover)))

	if post.ID != "" {
		content.WriteString(fmt.Sprintf("`%s/%s`\n\n", strings.TrimRight(a.config.UI.BlogPath, "/"), post.ID))
	}

	content.WriteString("---\n\n")
	content.WriteString(post.Excerpt)
	content.WriteString("\n\n")

	if tags := selectableTags(post); len(tags) > 0 {
		content.WriteString("**Tags:**\n\n")
		for i, tag := range tags {
			content.WriteString(fmt.Sprintf("%d. %s\n", i+1, tag))
		}
	}

	return content.String()
}

// selectableTags are the tags reachable through the digit keys.
func selectableTags(post discovery.Post) []string {
	if len(post.Tags) > 9 {
		return post.Tags[:9]
	}
	return post.Tags
}
