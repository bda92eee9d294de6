package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/tptin07/blogscout/internal/config"
	"github.com/tptin07/blogscout/internal/debuglog"
	"github.com/tptin07/blogscout/internal/discovery"
)

// sidebarMinWidth is the terminal width from which the popular posts are
// drawn beside the listing instead of below it.
const sidebarMinWidth = 100

// App is one mounted blog listing page.
type App struct {
	config     *config.Config
	service    discovery.PostService
	keyHandler *KeyHandler

	state   discovery.State
	popular *discovery.PopularityFeed
	address string

	postList    list.Model
	searchInput textinput.Model
	navInput    textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model

	view       View
	current    *discovery.Post
	rendering  bool
	width      int
	height     int
	status     string
	statusKind StatusKind

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// NewApp creates a page for address backed by svc. Nothing is fetched
// until Init runs.
func NewApp(svc discovery.PostService, cfg *config.Config, address string) *App {
	postList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	postList.Title = "› posts"
	postList.SetShowTitle(false)
	postList.SetShowStatusBar(false)
	postList.SetFilteringEnabled(false)
	postList.SetShowHelp(false)

	si := textinput.New()
	si.Placeholder = "Search posts..."
	si.CharLimit = 256

	ni := textinput.New()
	ni.Placeholder = "Paste an address, e.g. /blog?tag=vitamin-c"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	limits := discovery.Limits{
		InitialCount:  cfg.Discovery.InitialCount,
		LoadMoreCount: cfg.Discovery.LoadMoreCount,
		PrefetchLimit: cfg.Discovery.PrefetchLimit,
		PopularCount:  cfg.Discovery.PopularCount,
	}.WithDefaults()

	app := &App{
		config:      cfg,
		service:     svc,
		state:       discovery.NewState(limits),
		popular:     discovery.NewPopularityFeed(limits.PopularCount),
		address:     address,
		postList:    postList,
		searchInput: si,
		navInput:    ni,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		view:        ViewList,
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

// State returns the page's current discovery state.
func (a *App) State() discovery.State {
	return a.state
}

// Address is the shareable address of the current query.
func (a *App) Address() string {
	path := a.config.UI.BlogPath
	if a.state.URL == "" {
		return path
	}
	return path + "?" + a.state.URL
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth, minWidth := a.config.UI.WordWrapMax, a.config.UI.WordWrapMin
	if maxWidth <= 0 {
		maxWidth = 120
	}
	if minWidth <= 0 || minWidth > maxWidth {
		minWidth = min(40, maxWidth)
	}

	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width > 0 && a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.dispatch(discovery.Mount{Address: a.address})}
	if count, ok := a.popular.Request(); ok {
		cmds = append(cmds, a.loadPopular(count))
	}
	return tea.Batch(cmds...)
}

// dispatch runs ev through the transition function and turns the fetches it
// asks for into commands.
func (a *App) dispatch(ev discovery.Event) tea.Cmd {
	next, fetches := discovery.Transition(a.state, ev)
	a.state = next

	// Tag selection and address changes rewrite the search text too
	if a.view != ViewSearch && a.searchInput.Value() != a.state.Query.Text {
		a.searchInput.SetValue(a.state.Query.Text)
	}

	cmds := []tea.Cmd{a.syncPosts()}
	for _, f := range fetches {
		debuglog.WithFields(map[string]interface{}{
			"seq":   f.Seq,
			"query": a.state.URL,
		}).Debugf("issuing post query")
		cmds = append(cmds, a.fetchPosts(f))
	}
	if len(fetches) > 0 {
		a.setStatus(MsgLoading, StatusInfo)
		cmds = append(cmds, a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// syncPosts mirrors the revealed posts into the list, keeping the cursor
// where it was when the list only grew.
func (a *App) syncPosts() tea.Cmd {
	visible := a.state.Visible()
	items := make([]list.Item, len(visible))
	for i, p := range visible {
		items[i] = postItem{post: p}
	}

	idx := a.postList.Index()
	cmd := a.postList.SetItems(items)
	if idx >= len(items) {
		a.postList.Select(0)
	}
	return cmd
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case postsFetchedMsg:
		return a, a.handlePostsFetched(msg)

	case popularLoadedMsg:
		if !a.popular.Resolve(msg.posts, msg.err) {
			return a, nil
		}
		if msg.err != nil {
			debuglog.WithFields(map[string]interface{}{"component": "popular"}).Warnf("%v", msg.err)
		}
		return a, nil

	case detailRenderedMsg:
		if a.view == ViewDetail && a.current != nil && a.current.ID == msg.postID {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.rendering = false
			a.setStatus("", StatusInfo)
		}
		return a, nil

	case spinner.TickMsg:
		if a.state.Phase != discovery.PhaseLoading && !a.rendering {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Cursor blink and other input housekeeping
	var cmd tea.Cmd
	switch a.view {
	case ViewSearch:
		a.searchInput, cmd = a.searchInput.Update(msg)
	case ViewNavigate:
		a.navInput, cmd = a.navInput.Update(msg)
	case ViewDetail:
		a.viewport, cmd = a.viewport.Update(msg)
	}
	return a, cmd
}

func (a *App) handlePostsFetched(msg postsFetchedMsg) tea.Cmd {
	fields := map[string]interface{}{
		"seq":     msg.seq,
		"current": a.state.Seq(),
		"query":   a.state.URL,
	}
	if a.state.IsStale(msg.seq) {
		debuglog.WithFields(fields).Debugf("discarding stale post response")
		return nil
	}

	cmd := a.dispatch(discovery.FetchResolved{Seq: msg.seq, Page: msg.page, Err: msg.err})

	switch {
	case msg.err != nil:
		// The empty state covers failures; the cause only goes to the log.
		fields["error"] = msg.err.Error()
		debuglog.WithFields(fields).Errorf("%s: %s", MsgLoadFailed, describeErr(msg.err))
		a.setStatus(MsgNoResults, StatusWarn)
	case len(a.state.Posts) == 0:
		a.setStatus(MsgNoResults, StatusWarn)
	default:
		a.setStatus(MsgResultsCount(a.state.Revealed(), a.state.Total), StatusSuccess)
	}
	return cmd
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	listWidth := width
	if width >= sidebarMinWidth {
		listWidth = width - a.sidebarWidth() - 2
	}
	a.postList.SetSize(listWidth, max(height-10, 3))

	a.viewport.Width = width
	a.viewport.Height = max(height-4, 1)

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width
	}
	a.searchInput.Width = inputWidth
	a.navInput.Width = inputWidth
}

func (a *App) sidebarWidth() int {
	return min(40, a.width/3)
}

func (a *App) View() string {
	contentHeight := max(a.height-4, 1)

	var content string
	switch a.view {
	case ViewDetail:
		if a.rendering {
			content = renderCentered(a.width, contentHeight, a.spinner.View()+" "+renderMuted(MsgRendering))
		} else {
			content = a.viewport.View()
		}

	case ViewNavigate:
		content = renderCentered(a.width, contentHeight,
			lipgloss.JoinVertical(
				lipgloss.Center,
				TitleStyle.Render("› go to address"),
				"",
				renderInputFrame("", a.navInput.View(), a.navInput.Focused(), a.navInput.Width),
				"",
				renderHelp("Press Enter to apply the tag, Esc to cancel"),
			),
		)

	default:
		content = a.listView(contentHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Top,
		ContentWrapper(a.width, contentHeight).Render(content),
		a.statusBar(),
	)
}

func (a *App) listView(height int) string {
	header := renderHeader("› "+AppName, a.state.Query, a.width)
	search := renderInputFrame(a.config.Keys.Bindings.Search+" search", a.searchInput.View(), a.searchInput.Focused(), max(a.width-8, 10))

	var body string
	switch {
	case a.state.Phase == discovery.PhaseLoading:
		body = renderCentered(a.postList.Width(), max(height-6, 1), a.spinner.View()+" "+renderMuted(MsgLoading))
	case len(a.state.Posts) == 0:
		body = renderCentered(a.postList.Width(), max(height-6, 1), GetEmptyMessage(a.config.Keys.Bindings.ClearFilters))
	default:
		body = lipgloss.JoinVertical(lipgloss.Top, a.postList.View(), a.moreHint())
	}

	if a.width >= sidebarMinWidth {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", a.popularView())
	} else {
		body = lipgloss.JoinVertical(lipgloss.Top, body, a.popularView())
	}

	return lipgloss.JoinVertical(lipgloss.Top, header, search, body)
}

func (a *App) moreHint() string {
	switch {
	case a.state.CanLoadMore():
		remaining := len(a.state.Posts) - a.state.Revealed()
		return renderHelp(fmt.Sprintf("%s: load more (%d hidden)", a.config.Keys.Bindings.LoadMore, remaining))
	case a.state.Truncated():
		return StatusWarnStyle.Render(MsgTruncated(len(a.state.Posts), a.state.Total))
	default:
		return ""
	}
}

func (a *App) popularView() string {
	width := a.sidebarWidth()
	if a.width < sidebarMinWidth {
		width = a.width
	}

	rows := []string{PopularTitleStyle.Render("★ popular")}
	switch {
	case !a.popular.Loaded():
		rows = append(rows, renderMuted("…"))
	case a.popular.Err() != nil:
		rows = append(rows, renderMuted(MsgPopularFailed))
	default:
		for i, p := range a.popular.Posts() {
			line := fmt.Sprintf("%d. %s", i+1, truncateEnd(p.Title, width-4))
			rows = append(rows, lipgloss.NewStyle().Foreground(TextColor).Render(line))
		}
	}
	return lipgloss.NewStyle().Width(width).Render(lipgloss.JoinVertical(lipgloss.Top, rows...))
}

func (a *App) statusBar() string {
	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width, 1)))

	address := AddressStyle.Render("⌂ " + truncateMiddle(a.Address(), max(a.width-4, 8)))

	line := ""
	if a.status != "" {
		line = a.statusKind.style().Render(a.status)
	}
	if commands := a.keyHandler.GetHelpForCurrentView(); len(commands) > 0 {
		help := strings.Join(commands, " • ")
		if line != "" {
			line += "  " + renderMuted(help)
		} else {
			line = renderMuted(help)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Top,
		separator,
		StatusBarStyle.Width(a.width).Render(address),
		StatusBarStyle.Width(a.width).Render(line),
	)
}
