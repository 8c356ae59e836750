package value

import "strings"

// listNode is one element of the doubly-linked List.
type listNode struct {
	val        Value
	prev, next *listNode
}

// List is a heap-allocated doubly-linked list with cached head/tail so
// push-front/push-back/size are all O(1).
type List struct {
	refcount
	head, tail *listNode
	count      int
}

func (l *List) free() {
	for n := l.head; n != nil; {
		next := n.next
		n.val.Free()
		n = next
	}
}

// NewList builds an empty list value.
func NewList() Value {
	l := &List{}
	l.n = 1
	return Value{Kind: KindList, heap: l}
}

func (v Value) asList() *List { return v.heap.(*List) }

func (l *List) Size() int { return l.count }

func (l *List) Append(v Value) {
	n := &listNode{val: v}
	if l.tail == nil {
		l.head, l.tail = n, n
	} else {
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
	}
	l.count++
}

func (l *List) Prepend(v Value) {
	n := &listNode{val: v}
	if l.head == nil {
		l.head, l.tail = n, n
	} else {
		n.next = l.head
		l.head.prev = n
		l.head = n
	}
	l.count++
}

// At returns the element at 0-based index i, or Null with ok=false if
// out of range.
func (l *List) At(i int) (Value, bool) {
	if i < 0 || i >= l.count {
		return Null, false
	}
	n := l.head
	for ; i > 0; i-- {
		n = n.next
	}
	return n.val, true
}

// RemoveFront pops and returns the first element.
func (l *List) RemoveFront() (Value, bool) {
	if l.head == nil {
		return Null, false
	}
	n := l.head
	l.head = n.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	l.count--
	return n.val, true
}

// RemoveBack pops and returns the last element.
func (l *List) RemoveBack() (Value, bool) {
	if l.tail == nil {
		return Null, false
	}
	n := l.tail
	l.tail = n.prev
	if l.tail != nil {
		l.tail.next = nil
	} else {
		l.head = nil
	}
	l.count--
	return n.val, true
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteString("list(")
	for n, i := l.head, 0; n != nil; n, i = n.next, i+1 {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(n.val.String())
	}
	sb.WriteString(")")
	return sb.String()
}
