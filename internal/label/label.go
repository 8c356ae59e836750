// Package label implements the forward-reference jump-patching scheme
// spec.md §4.4 describes: a label holds its resolved offset (-1 until
// placed) and the head of a patch chain threaded through not-yet-patched
// operand slots, rather than a Vec<FixupSite> per label — the chain
// lives in the label descriptor, the links live in the opcode array
// itself, exactly as the teacher's inline jump-patch code did it for a
// single site, generalized here to an arbitrary number of forward
// references.
package label

// Patcher is the minimal surface a Label needs from its owning chunk:
// read one operand word (a previously-written chain link) and overwrite
// one operand word (either the next chain link, when reserving a new
// reference, or the final target, when the label is placed).
type Patcher interface {
	ReadOperand(offset int) int
	WriteOperand(offset int, word int)
}

// Label is a forward-reference jump target. Offset is -1 until Place is
// called; Chain is -1 when there is no unpatched reference pending.
type Label struct {
	Name   string
	Offset int
	Chain  int
}

// New returns a fresh, unplaced, unreferenced label.
func New(name string) *Label {
	return &Label{Name: name, Offset: -1, Chain: -1}
}

// Reserve records a new forward reference at operandOffset (the operand
// slot a jump instruction just emitted) by threading it onto the chain:
// the slot is written with the current chain head, then becomes the new
// head. If the label is already placed, the caller should instead write
// l.Offset directly and never call Reserve.
func (l *Label) Reserve(p Patcher, operandOffset int) {
	p.WriteOperand(operandOffset, l.Chain)
	l.Chain = operandOffset
}

// Place walks the chain, overwriting every link with target (the current
// emission offset), sets the label's own offset, and clears the chain.
func (l *Label) Place(p Patcher, target int) {
	l.Offset = target
	link := l.Chain
	for link != -1 {
		next := p.ReadOperand(link)
		p.WriteOperand(link, target)
		link = next
	}
	l.Chain = -1
}

// Defined reports whether Place has been called.
func (l *Label) Defined() bool { return l.Offset != -1 }

// Table tracks every user-named label declared in the function currently
// being compiled, so Finalize can report any that were referenced by
// goto but never defined.
type Table struct {
	labels map[string]*Label
}

func NewTable() *Table {
	return &Table{labels: make(map[string]*Label)}
}

// Lookup returns the named label, creating it (unplaced) on first
// reference.
func (t *Table) Lookup(name string) *Label {
	if l, ok := t.labels[name]; ok {
		return l
	}
	l := New(name)
	t.labels[name] = l
	return l
}

// Finalize reports every named label that was referenced but never
// placed, per spec.md §4.4 / invariant 3.
func (t *Table) Finalize() []string {
	var undefined []string
	for name, l := range t.labels {
		if !l.Defined() {
			undefined = append(undefined, name)
		}
	}
	return undefined
}
