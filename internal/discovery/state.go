package discovery

import "strings"

// Phase is where the current query generation is in its lifecycle.
type Phase int

const (
	// PhaseLoading means a fetch for the current query is in flight.
	PhaseLoading Phase = iota
	// PhaseReady means the buffer holds the current query's results.
	PhaseReady
	// PhaseExpanded means the user has grown the window at least once.
	PhaseExpanded
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseExpanded:
		return "expanded"
	default:
		return "unknown"
	}
}

// Limits are the sizes the engine works with.
type Limits struct {
	// InitialCount is the window size after every query change.
	InitialCount int
	// LoadMoreCount is how many posts one "load more" reveals.
	LoadMoreCount int
	// PrefetchLimit is the page size requested per fetch. Results beyond it
	// are never fetched; State.Truncated reports when that ceiling is hit.
	PrefetchLimit int
	// PopularCount is the size of the popularity list.
	PopularCount int
}

// DefaultLimits returns 9 initial, 9 per load more, 200 prefetched, 6 popular.
func DefaultLimits() Limits {
	return Limits{
		InitialCount:  9,
		LoadMoreCount: 9,
		PrefetchLimit: 200,
		PopularCount:  6,
	}
}

// WithDefaults replaces non-positive limits with their defaults.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.InitialCount < 1 {
		l.InitialCount = d.InitialCount
	}
	if l.LoadMoreCount < 1 {
		l.LoadMoreCount = d.LoadMoreCount
	}
	if l.PrefetchLimit < 1 {
		l.PrefetchLimit = d.PrefetchLimit
	}
	if l.PopularCount < 1 {
		l.PopularCount = d.PopularCount
	}
	return l
}

// Fetch asks the caller to query the post service. The result must be fed
// back as a FetchResolved carrying the same Seq.
type Fetch struct {
	Seq    uint64
	Params Params
}

// State is everything one blog listing page instance knows: the query, its
// address, the result buffer of the latest accepted fetch and the disclosure
// window over it. States are values; Transition returns a new one.
type State struct {
	Query  Query
	URL    string
	Phase  Phase
	Posts  []Post
	Total  int
	Window Window
	// Err is the failure behind an empty buffer, kept for diagnostics only.
	Err error

	limits Limits
	issued uint64
	// lastURLTag is the last tag taken from an external address.
	lastURLTag string
}

// NewState returns the state of a page that has not been mounted yet.
func NewState(limits Limits) State {
	limits = limits.WithDefaults()
	q := DefaultQuery()
	return State{
		Query:  q,
		URL:    q.Encode(),
		Phase:  PhaseLoading,
		Window: NewWindow(limits.InitialCount),
		limits: limits,
	}
}

// Limits returns the limits the state was created with.
func (s State) Limits() Limits {
	return s.limits
}

// Seq is the sequence number of the most recently issued fetch, 0 if none.
func (s State) Seq() uint64 {
	return s.issued
}

// Revealed is the number of posts currently shown.
func (s State) Revealed() int {
	return s.Window.Revealed(len(s.Posts))
}

// Visible returns the shown posts in service order.
func (s State) Visible() []Post {
	n := s.Revealed()
	return s.Posts[:n:n]
}

// CanLoadMore reports whether a "load more" control should be offered.
func (s State) CanLoadMore() bool {
	return s.Phase != PhaseLoading && s.Window.CanGrow(len(s.Posts))
}

// Truncated reports that every buffered post is shown but the service
// matched more than the prefetch limit allowed to fetch.
func (s State) Truncated() bool {
	return s.Phase != PhaseLoading && !s.CanLoadMore() && s.Total > len(s.Posts)
}

// Event is an input to Transition.
type Event interface {
	event()
}

// Mount initializes the page from the address it was opened with.
type Mount struct{ Address string }

// SetText changes the free-text search.
type SetText struct{ Text string }

// SelectCategory changes the category filter.
type SelectCategory struct{ Category Category }

// SelectSort changes the sort order.
type SelectSort struct{ Sort Sort }

// SelectTag selects a tag. Tags are searched as free text, so the search
// text becomes the tag as well. An empty tag clears both.
type SelectTag struct{ Tag string }

// ClearFilters returns to the default query.
type ClearFilters struct{}

// URLChanged reports that the address was changed from outside the page.
type URLChanged struct{ Address string }

// FetchResolved delivers the outcome of an issued Fetch.
type FetchResolved struct {
	Seq  uint64
	Page Page
	Err  error
}

// GrowWindow is a "load more" request.
type GrowWindow struct{}

func (Mount) event()          {}
func (SetText) event()        {}
func (SelectCategory) event() {}
func (SelectSort) event()     {}
func (SelectTag) event()      {}
func (ClearFilters) event()   {}
func (URLChanged) event()     {}
func (FetchResolved) event()  {}
func (GrowWindow) event()     {}

// Transition applies ev to s. It returns the next state and the fetches the
// caller must issue, at most one per call.
func Transition(s State, ev Event) (State, []Fetch) {
	switch ev := ev.(type) {
	case Mount:
		return s.requery(ParseQuery(ev.Address))

	case SetText:
		q := s.Query
		text := strings.TrimSpace(ev.Text)
		if text == q.Text {
			return s, nil
		}
		q.Text = text
		if q.Tag != "" && text != q.Tag {
			q.Tag = ""
		}
		return s.requery(q)

	case SelectCategory:
		q := s.Query
		q.Category, _ = ParseCategory(string(ev.Category))
		if q == s.Query {
			return s, nil
		}
		return s.requery(q)

	case SelectSort:
		q := s.Query
		q.Sort, _ = ParseSort(string(ev.Sort))
		if q == s.Query {
			return s, nil
		}
		return s.requery(q)

	case SelectTag:
		q := s.Query
		tag := strings.TrimSpace(ev.Tag)
		q.Tag, q.Text = tag, tag
		if tag == "" && s.Query.Tag == "" {
			return s, nil
		}
		if q == s.Query {
			return s, nil
		}
		return s.requery(q)

	case ClearFilters:
		if s.Query.IsDefault() {
			return s, nil
		}
		return s.requery(DefaultQuery())

	case URLChanged:
		// Only the tag is taken from an external address, and each distinct
		// incoming value applies once even after local edits cleared it.
		tag := IncomingTag(ev.Address)
		if tag == "" || tag == s.Query.Tag || tag == s.lastURLTag {
			return s, nil
		}
		s.lastURLTag = tag
		q := s.Query
		q.Tag, q.Text = tag, tag
		return s.requery(q)

	case FetchResolved:
		return s.resolve(ev), nil

	case GrowWindow:
		if s.Phase == PhaseLoading {
			return s, nil
		}
		w := s.Window.Grow(s.limits.LoadMoreCount, len(s.Posts))
		if w == s.Window {
			return s, nil
		}
		s.Window = w
		s.Phase = PhaseExpanded
		return s, nil

	default:
		return s, nil
	}
}

// requery starts a new generation for q: the buffer is dropped, the window
// goes back to its initial size and one fetch is issued.
func (s State) requery(q Query) (State, []Fetch) {
	q = q.Normalize()
	s.issued++
	s.Query = q
	s.URL = q.Encode()
	s.Phase = PhaseLoading
	s.Posts = nil
	s.Total = 0
	s.Err = nil
	s.Window = NewWindow(s.limits.InitialCount)

	return s, []Fetch{{
		Seq: s.issued,
		Params: Params{
			Q:        q.Text,
			Category: q.Category,
			Tag:      q.Tag,
			Sort:     q.Sort,
			Page:     1,
			Limit:    s.limits.PrefetchLimit,
		},
	}}
}

// resolve accepts a fetch result only if it answers the latest issued fetch
// and that fetch has not been answered yet. Anything else is stale.
func (s State) resolve(ev FetchResolved) State {
	if s.IsStale(ev.Seq) {
		return s
	}

	s.Phase = PhaseReady
	s.Window = NewWindow(s.limits.InitialCount)

	if ev.Err != nil {
		s.Posts = nil
		s.Total = 0
		s.Err = ev.Err
		return s
	}

	s.Err = nil
	s.Posts = ev.Page.Posts
	if s.Posts == nil {
		s.Posts = []Post{}
	}
	s.Total = max(ev.Page.Total, len(s.Posts))
	return s
}

// IsStale reports whether a result for seq would be discarded by s.
func (s State) IsStale(seq uint64) bool {
	return seq == 0 || seq != s.issued || s.Phase != PhaseLoading
}
