package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tptin07/blogscout/internal/config"
	"github.com/tptin07/blogscout/internal/discovery"
)

type KeyHandler struct {
	app      *App
	keys     config.KeyBindings
	showHelp bool
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, keys: cfg.Keys.Bindings}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focused()
	case ViewNavigate:
		return kh.app.navInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return kh.app, tea.Quit
	case "esc":
		return kh.navigateBack()
	case "enter":
		return kh.handleTextInputEnter()
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		kh.app.searchInput.Blur()
		kh.app.view = ViewList
		return kh.app, nil

	case ViewNavigate:
		address := strings.TrimSpace(kh.app.navInput.Value())
		kh.app.navInput.Blur()
		kh.app.navInput.Reset()
		kh.app.view = ViewList
		if address == "" {
			return kh.app, nil
		}
		return kh.app, kh.app.dispatch(discovery.URLChanged{Address: address})

	default:
		return kh.app, nil
	}
}

// delegateToTextInput passes the key to the focused input. Every edit of the
// search box is dispatched right away; overlapping fetches are resolved by
// their sequence numbers.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		newSearchInput, cmd := kh.app.searchInput.Update(msg)
		kh.app.searchInput = newSearchInput

		text := kh.sanitizeSearchInput(kh.app.searchInput.Value())
		if text != kh.app.state.Query.Text {
			return kh.app, tea.Batch(cmd, kh.app.dispatch(discovery.SetText{Text: text}))
		}
		return kh.app, cmd

	case ViewNavigate:
		newNavInput, cmd := kh.app.navInput.Update(msg)
		kh.app.navInput = newNavInput
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", kh.keys.Quit:
		return kh.app, tea.Quit, true
	case kh.keys.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.keys.Help:
		kh.showHelp = !kh.showHelp
		return kh.app, nil, true
	}

	switch kh.app.view {
	case ViewList:
		return kh.handleListCustomKeys(key)
	case ViewDetail:
		return kh.handleDetailCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleListCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	q := app.state.Query

	switch key {
	case kh.keys.Search:
		app.view = ViewSearch
		return app, app.searchInput.Focus(), true

	case kh.keys.NextCategory:
		return app, app.dispatch(discovery.SelectCategory{Category: q.Category.Next()}), true

	case kh.keys.PrevCategory:
		return app, app.dispatch(discovery.SelectCategory{Category: q.Category.Prev()}), true

	case kh.keys.CycleSort:
		return app, app.dispatch(discovery.SelectSort{Sort: q.Sort.Next()}), true

	case kh.keys.LoadMore:
		if !app.state.CanLoadMore() {
			if app.state.Truncated() {
				app.setStatus(MsgTruncated(len(app.state.Posts), app.state.Total), StatusWarn)
			} else if app.state.Phase != discovery.PhaseLoading {
				app.setStatus(MsgNothingToLoad, StatusInfo)
			}
			return app, nil, true
		}
		cmd := app.dispatch(discovery.GrowWindow{})
		app.setStatus(MsgResultsCount(app.state.Revealed(), app.state.Total), StatusSuccess)
		return app, cmd, true

	case kh.keys.ClearFilters:
		if q.IsDefault() {
			app.setStatus(MsgFiltersCleared, StatusInfo)
			return app, nil, true
		}
		return app, app.dispatch(discovery.ClearFilters{}), true

	case kh.keys.Navigate:
		app.view = ViewNavigate
		app.navInput.Reset()
		return app, app.navInput.Focus(), true

	case kh.keys.Reload:
		return app, app.dispatch(discovery.Mount{Address: app.state.URL}), true

	case "enter":
		model, cmd := kh.openSelected()
		return model, cmd, true
	}
	return app, nil, false
}

func (kh *KeyHandler) handleDetailCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	if app.current == nil {
		return app, nil, false
	}

	n, err := strconv.Atoi(key)
	if err != nil || n < 1 {
		return app, nil, false
	}
	tags := selectableTags(*app.current)
	if n > len(tags) {
		return app, nil, true
	}

	tag := tags[n-1]
	app.view = ViewList
	app.current = nil
	cmd := app.dispatch(discovery.SelectTag{Tag: tag})
	if app.state.Phase != discovery.PhaseLoading {
		app.setStatus(MsgTagSelected(tag), StatusInfo)
	}
	return app, cmd, true
}

func (kh *KeyHandler) openSelected() (tea.Model, tea.Cmd) {
	app := kh.app
	item, ok := app.postList.SelectedItem().(postItem)
	if !ok {
		return app, nil
	}

	post := item.post
	app.current = &post
	app.rendering = true
	app.view = ViewDetail
	app.setStatus(MsgRendering, StatusInfo)
	return app, tea.Batch(app.spinner.Tick, app.renderDetail(post))
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewList:
		kh.app.postList, cmd = kh.app.postList.Update(msg)
		return kh.app, cmd

	case ViewDetail:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// navigateBack leaves the current view. The search text is kept when the
// search box is left.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		kh.app.searchInput.Blur()
		kh.app.view = ViewList
		return kh.app, nil

	case ViewNavigate:
		kh.app.navInput.Blur()
		kh.app.navInput.Reset()
		kh.app.view = ViewList
		return kh.app, nil

	case ViewDetail:
		kh.app.view = ViewList
		kh.app.current = nil
		kh.app.rendering = false
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

// sanitizeSearchInput sanitizes and limits search input length
func (kh *KeyHandler) sanitizeSearchInput(input string) string {
	input = strings.TrimSpace(input)

	if r := []rune(input); len(r) > 256 {
		input = string(r[:256])
	}

	input = strings.ReplaceAll(input, "\n", " ")
	input = strings.ReplaceAll(input, "\r", " ")
	input = strings.ReplaceAll(input, "\t", " ")

	for strings.Contains(input, "  ") {
		input = strings.ReplaceAll(input, "  ", " ")
	}

	return strings.TrimSpace(input)
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	k := kh.keys
	switch kh.app.view {
	case ViewList:
		if !kh.showHelp {
			return []string{k.Search + ": search", k.NextCategory + ": category", k.CycleSort + ": sort", k.Help + ": more"}
		}
		return []string{
			k.Search + ": search",
			k.NextCategory + "/" + k.PrevCategory + ": category",
			k.CycleSort + ": sort",
			k.LoadMore + ": load more",
			k.ClearFilters + ": clear",
			"enter: open",
			k.Navigate + ": go to address",
			k.Reload + ": reload",
			k.Quit + ": quit",
		}

	case ViewSearch:
		return []string{"enter: done", "esc: back"}

	case ViewNavigate:
		return []string{"enter: go", "esc: cancel"}

	case ViewDetail:
		help := []string{k.Back + ": back"}
		if kh.app.current != nil && len(kh.app.current.Tags) > 0 {
			help = append([]string{"1-" + strconv.Itoa(len(selectableTags(*kh.app.current))) + ": select tag"}, help...)
		}
		return help

	default:
		return []string{}
	}
}
