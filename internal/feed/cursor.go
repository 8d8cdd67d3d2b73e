package feed

import "github.com/lysyi3m/podcomb/internal/markup"

type CursorState int

const (
	AtContainerEnd CursorState = iota
	Scanning
	Exhausted
)

func (s CursorState) String() string {
	switch s {
	case AtContainerEnd:
		return "at_container_end"
	case Scanning:
		return "scanning"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Cursor walks the children of a container from the last one to the first.
// It only relies on PrevSibling, so it does not care how the tree is stored.
type Cursor struct {
	state CursorState
	node  markup.Node
}

func NewCursor(container markup.Node) Cursor {
	last := container.LastChild()
	if last == nil {
		return Cursor{state: Exhausted}
	}
	return Cursor{state: AtContainerEnd, node: last}
}

func (c *Cursor) State() CursorState {
	return c.state
}

// Next returns the next candidate node, or nil once the cursor is exhausted.
func (c *Cursor) Next() markup.Node {
	switch c.state {
	case AtContainerEnd:
		c.state = Scanning
		return c.node
	case Scanning:
		c.node = c.node.PrevSibling()
		if c.node == nil {
			c.state = Exhausted
			return nil
		}
		return c.node
	default:
		return nil
	}
}

func (c *Cursor) exhaust() {
	c.state = Exhausted
	c.node = nil
}
