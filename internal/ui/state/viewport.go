package state

// Viewport tracks the window of a list that fits on screen.
type Viewport struct {
	// Offset is the index of the first visible row.
	Offset int
	// Height is the number of rows available; <= 0 shows every row.
	Height int
}

// Rows returns how many rows of a list with total entries are shown.
func (v Viewport) Rows(total int) int {
	if total <= 0 {
		return 0
	}
	if v.Height <= 0 || v.Height > total {
		return total
	}
	return v.Height
}

// Window returns the half-open range of visible indices.
func (v Viewport) Window(total int) (start, end int) {
	rows := v.Rows(total)
	start = v.clampOffset(total)
	return start, start + rows
}

// IndexAt maps a visible row back to a list index.
func (v Viewport) IndexAt(row, total int) (int, bool) {
	start, end := v.Window(total)
	idx := start + row
	if row < 0 || idx >= end {
		return -1, false
	}
	return idx, true
}

// Ensure adjusts the offset so that cursor stays visible. A negative cursor
// leaves the offset alone except for clamping.
func (v *Viewport) Ensure(cursor, total int) {
	if total <= 0 {
		v.Offset = 0
		return
	}
	v.Offset = v.clampOffset(total)
	if cursor < 0 || v.Height <= 0 {
		return
	}
	if cursor >= total {
		cursor = total - 1
	}
	if cursor < v.Offset {
		v.Offset = cursor
	}
	upper := v.Offset + v.Height - 1
	if cursor > upper {
		v.Offset = cursor - v.Height + 1
	}
	v.Offset = v.clampOffset(total)
}

// Scroll moves the offset by delta rows and reports whether it changed.
func (v *Viewport) Scroll(delta, total int) bool {
	old := v.Offset
	v.Offset += delta
	v.Offset = v.clampOffset(total)
	return v.Offset != old
}

func (v Viewport) clampOffset(total int) int {
	if v.Height <= 0 {
		return 0
	}
	maxOffset := total - v.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	offset := v.Offset
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
