package tui

import "github.com/mattn/go-runewidth"

const ellipsis = "…"

// truncateEnd shortens s to at most limit terminal cells, ending with an
// ellipsis when something was cut.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	return runewidth.Truncate(s, limit, ellipsis)
}

// truncateMiddle shortens s to at most limit cells, keeping both ends.
// Addresses carry meaning at both the path and the last parameter.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit == 1 {
		return ellipsis
	}

	keep := limit - 1
	left := runewidth.Truncate(s, keep-keep/2, "")

	r := []rune(s)
	width, i := 0, len(r)
	for i > 0 {
		w := runewidth.RuneWidth(r[i-1])
		if width+w > keep/2 {
			break
		}
		width += w
		i--
	}
	return left + ellipsis + string(r[i:])
}
