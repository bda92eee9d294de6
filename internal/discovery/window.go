package discovery

// Window is the disclosure window over a result buffer: how many of the
// fetched posts are shown. It stores the requested size; the revealed count
// is always clamped to the buffer length.
type Window struct {
	size int
}

// NewWindow returns a window of the given initial size.
func NewWindow(initial int) Window {
	if initial < 1 {
		initial = 1
	}
	return Window{size: initial}
}

// Size is the requested window size before clamping.
func (w Window) Size() int {
	return w.size
}

// Revealed returns how many of n buffered posts are shown.
func (w Window) Revealed(n int) int {
	return min(w.size, n)
}

// CanGrow reports whether any of n buffered posts are still hidden.
func (w Window) CanGrow(n int) bool {
	return w.size < n
}

// Grow reveals up to step more of n buffered posts. Once everything is shown
// it returns w unchanged.
func (w Window) Grow(step, n int) Window {
	if !w.CanGrow(n) || step < 1 {
		return w
	}
	return Window{size: min(w.size+step, n)}
}
