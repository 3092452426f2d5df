package listbox

import (
	"strings"

	"golang.org/x/text/cases"
)

// SearchMatch returns the index of the first item after start, wrapping
// around, whose name begins with search under Unicode case folding. It
// returns -1 when nothing matches or search is empty. A start of -1 scans
// from the first item.
func SearchMatch(items ItemSource, search string, start int) int {
	if items == nil || search == "" {
		return -1
	}
	n := items.Len()
	if n == 0 {
		return -1
	}
	fold := cases.Fold()
	needle := fold.String(search)
	if start < -1 || start >= n {
		start = -1
	}
	for offset := 1; offset <= n; offset++ {
		i := (start + offset) % n
		if strings.HasPrefix(fold.String(items.At(i).Name), needle) {
			return i
		}
	}
	return -1
}
