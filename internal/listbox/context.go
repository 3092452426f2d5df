package listbox

// Handle is an externally owned interactive surface.
type Handle interface {
	Focus() error
	Contains(other Handle) bool
}

// Form is the form control owning the widget, when there is one.
type Form interface {
	Submit() error
}

// Env is the snapshot of externally owned handles attached to an event when
// it is sent.
type Env struct {
	Button  Handle
	Listbox Handle
	Form    Form
}

// EnvFunc produces the current Env; it is called once per Send.
type EnvFunc func() Env

// Document exposes document-level listeners.
type Document interface {
	OnPointerUp(fn func()) (detach func())
}

// Item describes one rendered option.
type Item struct {
	Name     string
	OnSelect func()
	Ref      Handle
}

// ItemSource is a live, ordered view of the rendered options. Length and
// contents are read when an action runs, never cached across events.
type ItemSource interface {
	Len() int
	At(i int) Item
}

// Items is a fixed ItemSource.
type Items []Item

func (s Items) Len() int      { return len(s) }
func (s Items) At(i int) Item { return s[i] }

// Context is the data record mutated by actions.
type Context struct {
	SelectedIndex    int
	HighlightIndex   int
	Search           string
	SearchStartIndex int
	Dragging         bool

	Button  Handle
	Listbox Handle
	Items   ItemSource
}

// NewContext returns a context with no selection and no highlight.
func NewContext(items ItemSource) Context {
	return Context{
		SelectedIndex:    -1,
		HighlightIndex:   -1,
		SearchStartIndex: -1,
		Items:            items,
	}
}

func (c *Context) itemCount() int {
	if c.Items == nil {
		return 0
	}
	return c.Items.Len()
}

// item returns the item at i when i addresses the live collection.
func (c *Context) item(i int) (Item, bool) {
	if i < 0 || i >= c.itemCount() {
		return Item{}, false
	}
	return c.Items.At(i), true
}
