package discovery

// PopularityFeed is the fixed-size ranked list shown beside the listing. It
// is fetched once per mount and is independent of the query state.
type PopularityFeed struct {
	count     int
	requested bool
	resolved  bool
	posts     []Post
	err       error
}

// NewPopularityFeed returns a feed that will request count posts.
func NewPopularityFeed(count int) *PopularityFeed {
	if count < 1 {
		count = DefaultLimits().PopularCount
	}
	return &PopularityFeed{count: count}
}

// Request returns the number of posts to ask for. Only the first call per
// feed returns ok; the feed is never refetched.
func (f *PopularityFeed) Request() (count int, ok bool) {
	if f.requested {
		return 0, false
	}
	f.requested = true
	return f.count, true
}

// Resolve stores the service's answer in the order received, keeping at most
// count posts. A failure leaves the list empty. Only the first resolution is
// kept; it reports whether this one was.
func (f *PopularityFeed) Resolve(posts []Post, err error) bool {
	if f.resolved {
		return false
	}
	f.resolved = true
	if err != nil {
		f.err = err
		f.posts = nil
		return true
	}
	if len(posts) > f.count {
		posts = posts[:f.count]
	}
	f.posts = posts
	return true
}

// Posts returns the ranked list, empty until resolved or after a failure.
func (f *PopularityFeed) Posts() []Post {
	return f.posts
}

// Loaded reports whether the fetch has completed, successfully or not.
func (f *PopularityFeed) Loaded() bool {
	return f.resolved
}

// Err is the failure of the fetch, if any.
func (f *PopularityFeed) Err() error {
	return f.err
}
