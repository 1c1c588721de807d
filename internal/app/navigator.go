package app

// Navigator tracks which question is currently visible. Pure index
// arithmetic over a fixed-length sequence; moves past either edge are
// silent no-ops and there is no wraparound.
type Navigator struct {
	cursor int
	count  int
}

func NewNavigator(count int) *Navigator {
	return &Navigator{count: count}
}

// Prev moves the cursor back and reports whether it moved.
func (n *Navigator) Prev() bool {
	if n.cursor == 0 {
		return false
	}
	n.cursor--
	return true
}

// Next moves the cursor forward and reports whether it moved.
func (n *Navigator) Next() bool {
	if n.cursor >= n.count-1 {
		return false
	}
	n.cursor++
	return true
}

func (n *Navigator) Cursor() int { return n.cursor }

// AtStart reports whether the prev control should be disabled.
func (n *Navigator) AtStart() bool { return n.cursor == 0 }

// AtEnd reports whether the next control should be disabled.
func (n *Navigator) AtEnd() bool { return n.cursor >= n.count-1 }
