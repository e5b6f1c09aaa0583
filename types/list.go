package types

// node holds a single value of an IntegerList. The next link owns the rest of
// the chain, prev is only used to walk backward and relink neighbours.
type node struct {
	value int

	next *node
	prev *node
}

// IntegerList is an ordered sequence of integers backed by a doubly linked
// chain of nodes. The zero value is an empty list ready to use.
//
// IntegerList is not safe for concurrent use.
type IntegerList struct {
	head *node
	tail *node
	size int
}

func New() *IntegerList {
	return &IntegerList{}
}

// NewFromFile creates a list populated with the integers read from path.
func NewFromFile(path string) (*IntegerList, error) {
	l := New()
	if _, err := l.LoadFromFile(path); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *IntegerList) Len() int {
	return l.size
}

func (l *IntegerList) IsEmpty() bool {
	return l.head == nil
}

func (l *IntegerList) PushFront(value int) {
	n := &node{value: value}

	if l.head == nil {
		l.head = n
		l.tail = n
		l.size++
		return
	}

	n.next = l.head
	l.head.prev = n
	l.head = n
	l.size++
}

func (l *IntegerList) PushBack(value int) {
	n := &node{value: value}

	if l.tail == nil {
		l.head = n
		l.tail = n
		l.size++
		return
	}

	n.prev = l.tail
	l.tail.next = n
	l.tail = n
	l.size++
}

// Append pushes values to the back of the list in order.
func (l *IntegerList) Append(values ...int) {
	for _, v := range values {
		l.PushBack(v)
	}
}

// PopFront removes the first value and returns it. ok is false if the list
// was empty, in which case nothing happens.
func (l *IntegerList) PopFront() (value int, ok bool) {
	if l.head == nil {
		return 0, false
	}
	value = l.head.value
	if l.head.next == nil {
		l.Clear()
		return value, true
	}
	l.unlink(l.head)
	return value, true
}

// PopBack removes the last value and returns it. ok is false if the list was
// empty, in which case nothing happens.
func (l *IntegerList) PopBack() (value int, ok bool) {
	if l.tail == nil {
		return 0, false
	}
	value = l.tail.value
	if l.tail.prev == nil {
		l.Clear()
		return value, true
	}
	l.unlink(l.tail)
	return value, true
}

// RemoveAt removes the value at index. It returns an *IndexError if index is
// not within [0, Len()).
func (l *IntegerList) RemoveAt(index int) error {
	n, err := l.nodeAt(index)
	if err != nil {
		return err
	}

	switch n {
	case l.head:
		l.PopFront()
	case l.tail:
		l.PopBack()
	default:
		l.unlink(n)
	}
	return nil
}

// RemoveValue removes every node holding value and reports how many were
// removed.
func (l *IntegerList) RemoveValue(value int) (removed int) {
	for n := l.head; n != nil; {
		next := n.next
		if n.value == value {
			l.unlink(n)
			removed++
		}
		n = next
	}
	return removed
}

func (l *IntegerList) Front() (int, error) {
	if l.head == nil {
		return 0, ErrEmpty
	}
	return l.head.value, nil
}

func (l *IntegerList) Back() (int, error) {
	if l.tail == nil {
		return 0, ErrEmpty
	}
	return l.tail.value, nil
}

// ElementAt returns the value at index. It returns an *IndexError if index is
// not within [0, Len()).
func (l *IntegerList) ElementAt(index int) (int, error) {
	n, err := l.nodeAt(index)
	if err != nil {
		return 0, err
	}
	return n.value, nil
}

// FindFirstIndex returns the position of the first node holding value, or
// Len() when no node does.
func (l *IntegerList) FindFirstIndex(value int) int {
	index := 0
	for n := l.head; n != nil; n = n.next {
		if n.value == value {
			return index
		}
		index++
	}
	return index
}

// Each calls fn for every value from front to back until fn returns false.
func (l *IntegerList) Each(fn func(value int) bool) {
	for n := l.head; n != nil; n = n.next {
		if !fn(n.value) {
			return
		}
	}
}

// Values returns a copy of the list contents in order.
func (l *IntegerList) Values() []int {
	values := make([]int, 0, l.size)
	for n := l.head; n != nil; n = n.next {
		values = append(values, n.value)
	}
	return values
}

// Clear releases every node and leaves the list empty.
func (l *IntegerList) Clear() {
	for n := l.head; n != nil; {
		next := n.next
		n.next = nil
		n.prev = nil
		n = next
	}
	l.head = nil
	l.tail = nil
	l.size = 0
}

// Cleanup releases the list contents when its owner is done with it.
func (l *IntegerList) Cleanup() {
	l.Clear()
}

func (l *IntegerList) nodeAt(index int) (*node, error) {
	if index < 0 || index >= l.size {
		return nil, &IndexError{Index: index, Size: l.size}
	}
	n := l.head
	for i := 0; i < index; i++ {
		n = n.next
	}
	return n, nil
}

func (l *IntegerList) unlink(n *node) {
	if n.prev == nil {
		l.head = n.next
	} else {
		n.prev.next = n.next
	}

	if n.next == nil {
		l.tail = n.prev
	} else {
		n.next.prev = n.prev
	}

	n.next = nil
	n.prev = nil
	l.size--
}
