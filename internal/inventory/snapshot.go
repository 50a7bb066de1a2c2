package inventory

// Snapshot is a read-only view over a container's slots as reported by the
// host. Slot never panics: out of range indexes read as empty.
type Snapshot interface {
	Title() string
	Size() int
	Slot(index int) Item
}

// Writer is implemented by snapshots that accept slot writes, such as the
// ones rebuilt from a recording.
type Writer interface {
	SetSlot(index int, item Item) bool
}

// Slots is a fixed-size Snapshot backed by a slice.
type Slots struct {
	title string
	items []Item
}

func NewSlots(title string, size int) *Slots {
	if size < 0 {
		size = 0
	}
	return &Slots{title: title, items: make([]Item, size)}
}

func (s *Slots) Title() string {
	if s == nil {
		return ""
	}
	return s.title
}

func (s *Slots) Size() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

func (s *Slots) Slot(index int) Item {
	if s == nil || index < 0 || index >= len(s.items) {
		return Item{}
	}
	return s.items[index]
}

// SetSlot stores item at index. It reports false for out of range indexes.
func (s *Slots) SetSlot(index int, item Item) bool {
	if s == nil || index < 0 || index >= len(s.items) {
		return false
	}
	s.items[index] = item
	return true
}
