package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tptin07/blogscout/internal/config"
	"github.com/tptin07/blogscout/internal/discovery"
)

type fakeService struct {
	mu       sync.Mutex
	total    int
	err      error
	popular  []discovery.Post
	popErr   error
	queries  []discovery.Params
	popCalls []int
}

func (f *fakeService) QueryPosts(_ context.Context, p discovery.Params) (discovery.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, p)
	if f.err != nil {
		return discovery.Page{}, f.err
	}
	n := min(f.total, p.Limit)
	posts := make([]discovery.Post, n)
	for i := range posts {
		posts[i] = discovery.Post{
			ID:          fmt.Sprintf("post-%d", i+1),
			Title:       fmt.Sprintf("Post %d", i+1),
			Excerpt:     "Excerpt",
			Category:    "Thuốc",
			Tags:        []string{"vitamin-c", "omega-3"},
			Author:      "Dược sĩ An",
			PublishDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			ReadMinutes: 5,
		}
	}
	return discovery.Page{Posts: posts, Total: f.total}, nil
}

func (f *fakeService) PopularPosts(_ context.Context, count int) ([]discovery.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.popCalls = append(f.popCalls, count)
	return f.popular, f.popErr
}

func (f *fakeService) lastQuery(t *testing.T) discovery.Params {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.queries)
	return f.queries[len(f.queries)-1]
}

// collect runs cmd and every command batched inside it, returning the
// messages they produce.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func fetched(msgs []tea.Msg) []postsFetchedMsg {
	var out []postsFetchedMsg
	for _, m := range msgs {
		if f, ok := m.(postsFetchedMsg); ok {
			out = append(out, f)
		}
	}
	return out
}

// deliver feeds the result messages of cmd back into the app.
func deliver(a *App, cmd tea.Cmd) {
	for _, m := range collect(cmd) {
		switch m.(type) {
		case postsFetchedMsg, popularLoadedMsg, detailRenderedMsg:
			a.Update(m)
		}
	}
}

func newTestApp(t *testing.T, svc *fakeService, address string) *App {
	t.Helper()
	app := NewApp(svc, config.TestConfig(), address)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

func press(a *App, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := a.Update(msg)
	return cmd
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, &fakeService{}, "")

	assert.Equal(t, ViewList, app.view)
	assert.Equal(t, discovery.PhaseLoading, app.State().Phase)
	assert.Equal(t, uint64(0), app.State().Seq())
	assert.Equal(t, "/blog", app.Address())
	assert.NotNil(t, app.keyHandler)
}

func TestInitMountsFromAddress(t *testing.T) {
	svc := &fakeService{total: 20, popular: []discovery.Post{{ID: "p1", Title: "Popular"}}}
	app := newTestApp(t, svc, "/blog?tag=vitamin-c&sort=popular")

	deliver(app, app.Init())

	q := svc.lastQuery(t)
	assert.Equal(t, "vitamin-c", q.Tag)
	assert.Equal(t, "vitamin-c", q.Q)
	assert.Equal(t, discovery.SortPopular, q.Sort)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 200, q.Limit)
	assert.Equal(t, []int{6}, svc.popCalls)

	state := app.State()
	assert.Equal(t, discovery.PhaseReady, state.Phase)
	assert.Len(t, state.Posts, 20)
	assert.Equal(t, 9, state.Revealed())
	assert.Len(t, app.postList.Items(), 9)
	assert.Equal(t, "/blog?q=vitamin-c&tag=vitamin-c&sort=popular", app.Address())
	assert.Equal(t, "vitamin-c", app.searchInput.Value())

	assert.True(t, app.popular.Loaded())
	assert.Len(t, app.popular.Posts(), 1)
}

func TestTypingIssuesOverlappingFetches(t *testing.T) {
	svc := &fakeService{total: 3}
	app := newTestApp(t, svc, "")
	deliver(app, app.Init())

	press(app, "/")
	require.Equal(t, ViewSearch, app.view)

	first := fetched(collect(press(app, "v")))
	second := fetched(collect(press(app, "i")))
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "vi", app.State().Query.Text)

	// The older response arrives last and must be ignored.
	app.Update(second[0])
	require.Equal(t, discovery.PhaseReady, app.State().Phase)
	before := app.State()

	app.Update(first[0])
	assert.Equal(t, before.Seq(), app.State().Seq())
	assert.Equal(t, discovery.PhaseReady, app.State().Phase)
	assert.Equal(t, "q=vi", app.State().URL)
}

func TestSearchKeysTypeInsteadOfActing(t *testing.T) {
	svc := &fakeService{total: 3}
	app := newTestApp(t, svc, "")
	deliver(app, app.Init())

	press(app, "/")
	cmd := press(app, "q")
	for _, m := range collect(cmd) {
		_, isQuit := m.(tea.QuitMsg)
		assert.False(t, isQuit, "q in the search box should not quit")
	}
	assert.Equal(t, "q", app.searchInput.Value())

	press(app, "esc")
	assert.Equal(t, ViewList, app.view)
	assert.Equal(t, "q", app.searchInput.Value(), "leaving the search box keeps the text")
}

func TestLoadMore(t *testing.T) {
	svc := &fakeService{total: 20}
	app := newTestApp(t, svc, "")
	deliver(app, app.Init())

	press(app, "m")
	assert.Equal(t, 18, app.State().Revealed())
	assert.Equal(t, discovery.PhaseExpanded, app.State().Phase)
	assert.Len(t, app.postList.Items(), 18)

	press(app, "m")
	assert.Equal(t, 20, app.State().Revealed())

	press(app, "m")
	assert.Equal(t, 20, app.State().Revealed())
	assert.Equal(t, MsgNothingToLoad, app.status)
}

func TestLoadMoreReportsTruncation(t *testing.T) {
	svc := &fakeService{total: 250}
	app := newTestApp(t, svc, "")
	deliver(app, app.Init())

	for app.State().CanLoadMore() {
		press(app, "m")
	}
	require.True(t, app.State().Truncated())

	press(app, "m")
	assert.Equal(t, MsgTruncated(200, 250), app.status)
	assert.Contains(t, app.View(), "Showing the first 200 of 250")
}

func TestCategoryAndSortKeys(t *testing.T) {
	svc := &fakeService{total: 5}
	app := newTestApp(t, svc, "")
	deliver(app, app.Init())

	deliver(app, press(app, "c"))
	assert.Equal(t, discovery.CategoryMedicine, app.State().Query.Category)
	assert.Equal(t, discovery.CategoryMedicine, svc.lastQuery(t).Category)
	assert.Equal(t, "/blog?cat=Thu%E1%BB%91c", app.Address())

	deliver(app, press(app, "C"))
	assert.Equal(t, discovery.CategoryAll, app.State().Query.Category)

	deliver(app, press(app, "C"))
	assert.Equal(t, discovery.CategoryMotherBaby, app.State().Query.Category)

	deliver(app, press(app, "s"))
	assert.Equal(t, discovery.SortOldest, app.State().Query.Sort)
	assert.Equal(t, uint64(5), app.State().Seq())
}

func TestClearFilters(t *testing.T) {
	svc := &fakeService{total: 5}
	app := newTestApp(t, svc, "?q=x&cat=L%C3%A0m%20%C4%91%E1%BA%B9p&sort=oldest")
	deliver(app, app.Init())

	deliver(app, press(app, "x"))
	assert.True(t, app.State().Query.IsDefault())
	assert.Equal(t, "/blog", app.Address())
	assert.Equal(t, "", app.searchInput.Value())

	seq := app.State().Seq()
	press(app, "x")
	assert.Equal(t, seq, app.State().Seq(), "clearing default filters issues nothing")
}

func TestDetailTagSelection(t *testing.T) {
	svc := &fakeService{total: 3}
	app := newTestApp(t, svc, "")
	deliver(app, app.Init())

	cmd := press(app, "enter")
	require.Equal(t, ViewDetail, app.view)
	require.NotNil(t, app.current)
	assert.Equal(t, "post-1", app.current.ID)
	assert.True(t, app.rendering)

	deliver(app, cmd)
	assert.False(t, app.rendering)

	deliver(app, press(app, "2"))
	assert.Equal(t, ViewList, app.view)
	assert.Nil(t, app.current)
	q := app.State().Query
	assert.Equal(t, "omega-3", q.Tag)
	assert.Equal(t, "omega-3", q.Text)
	assert.Equal(t, "omega-3", app.searchInput.Value())
	assert.Equal(t, "omega-3", svc.lastQuery(t).Tag)
}

func TestDetailIgnoresMissingTag(t *testing.T) {
	svc := &fakeService{total: 1}
	app := newTestApp(t, svc, "")
	deliver(app, app.Init())

	press(app, "enter")
	seq := app.State().Seq()
	press(app, "9")
	assert.Equal(t, ViewDetail, app.view)
	assert.Equal(t, seq, app.State().Seq())

	press(app, "esc")
	assert.Equal(t, ViewList, app.view)
}

func TestNavigateAppliesTagOnce(t *testing.T) {
	svc := &fakeService{total: 2}
	app := newTestApp(t, svc, "?cat=Thu%E1%BB%91c")
	deliver(app, app.Init())

	navigate := func(address string) tea.Cmd {
		press(app, "g")
		require.Equal(t, ViewNavigate, app.view)
		press(app, address)
		return press(app, "enter")
	}

	deliver(app, navigate("/blog?tag=omega-3&sort=oldest"))
	q := app.State().Query
	assert.Equal(t, "omega-3", q.Tag)
	assert.Equal(t, discovery.CategoryMedicine, q.Category, "only the tag comes from outside")
	assert.Equal(t, discovery.SortNewest, q.Sort)
	seq := app.State().Seq()

	navigate("/blog?tag=omega-3")
	assert.Equal(t, seq, app.State().Seq(), "an applied tag is not applied again")
	assert.Equal(t, ViewList, app.view)
}

func TestReloadRemounts(t *testing.T) {
	svc := &fakeService{total: 12}
	app := newTestApp(t, svc, "?q=canxi")
	deliver(app, app.Init())
	press(app, "m")
	require.Equal(t, 12, app.State().Revealed())

	deliver(app, press(app, "r"))
	assert.Equal(t, uint64(2), app.State().Seq())
	assert.Equal(t, "canxi", app.State().Query.Text)
	assert.Equal(t, 9, app.State().Revealed())
	assert.Len(t, svc.popCalls, 1, "popular posts are fetched once per mount")
}

func TestFetchFailure(t *testing.T) {
	svc := &fakeService{err: errors.New("connection refused")}
	app := newTestApp(t, svc, "")
	deliver(app, app.Init())

	state := app.State()
	assert.Equal(t, discovery.PhaseReady, state.Phase)
	assert.Empty(t, state.Posts)
	assert.Error(t, state.Err)
	assert.Equal(t, 9, state.Window.Size())
	assert.Equal(t, 0, state.Revealed())
	assert.Equal(t, StatusWarn, app.statusKind)
	assert.Equal(t, MsgNoResults, app.status)
	assert.NotContains(t, app.View(), MsgLoadFailed)
	assert.Contains(t, app.View(), MsgNoResults)
}

func TestPopularFailureIsIsolated(t *testing.T) {
	svc := &fakeService{total: 4, popErr: errors.New("boom")}
	app := newTestApp(t, svc, "")
	deliver(app, app.Init())

	assert.True(t, app.popular.Loaded())
	assert.Empty(t, app.popular.Posts())
	assert.Equal(t, 4, app.State().Revealed())
	assert.Contains(t, app.View(), MsgPopularFailed)
}

func TestQuit(t *testing.T) {
	app := newTestApp(t, &fakeService{}, "")

	for _, key := range []string{"q", "ctrl+c"} {
		cmd := press(app, key)
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, "%s should quit", key)
	}
}

func TestViewRendersAddressAndSpinner(t *testing.T) {
	svc := &fakeService{total: 2}
	app := newTestApp(t, svc, "?q=omega")
	app.Init()

	view := app.View()
	assert.Contains(t, view, "/blog?q=omega")
	assert.Contains(t, view, MsgLoading)

	app.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	assert.NotEmpty(t, app.View())
}

func TestRenderDetailResolvesRendererBeforeRunning(t *testing.T) {
	app := newTestApp(t, &fakeService{}, "")
	post := discovery.Post{ID: "omega-3-guide", Title: "Omega-3", Excerpt: "Fish oil basics"}

	cmd := app.renderDetail(post)
	require.NotNil(t, cmd)
	renderer, width := app.glamourRenderer, app.rendererWidth
	require.NotNil(t, renderer)

	app.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	msg, ok := cmd().(detailRenderedMsg)
	require.True(t, ok)
	assert.Equal(t, "omega-3-guide", msg.postID)
	assert.Contains(t, msg.content, "Omega-3")
	assert.Same(t, renderer, app.glamourRenderer, "running the command leaves the cache alone")
	assert.Equal(t, width, app.rendererWidth)
}

func TestEmptyStateNamesClearKey(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Bindings.ClearFilters = "ctrl+l"
	app := NewApp(&fakeService{}, cfg, "?q=none")
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	deliver(app, app.Init())

	require.Empty(t, app.State().Posts)
	view := app.View()
	assert.Contains(t, view, "press ctrl+l to clear filters")
	assert.NotContains(t, view, "press x")
}

func TestHeaderShowsFilters(t *testing.T) {
	app := newTestApp(t, &fakeService{total: 2}, "?tag=omega-3&cat=Thu%E1%BB%91c&sort=oldest")
	deliver(app, app.Init())

	view := app.View()
	assert.Contains(t, view, "Thuốc")
	assert.Contains(t, view, "sort: oldest")
	assert.Contains(t, view, "#omega-3")
}

func TestDetailMarkdown(t *testing.T) {
	app := newTestApp(t, &fakeService{}, "")
	post := discovery.Post{
		ID:          "omega-3-guide",
		Title:       "Omega-3",
		Excerpt:     "Fish oil basics",
		Category:    "Dinh dưỡng",
		Tags:        []string{"omega-3", "tim mạch"},
		Author:      "BS. Lan",
		ReadMinutes: 4,
		ViewCount:   1,
	}

	md := app.detailMarkdown(post)
	assert.Contains(t, md, "# Omega-3")
	assert.Contains(t, md, "BS. Lan")
	assert.Contains(t, md, "4 phút đọc")
	assert.Contains(t, md, "1 view")
	assert.Contains(t, md, "/images/blog-placeholder.jpg")
	assert.Contains(t, md, "/blog/omega-3-guide")
	assert.Contains(t, md, "1. omega-3")
	assert.Contains(t, md, "2. tim mạch")
}
