package bytecode

// DebugInfo stores the source location an instruction word was emitted
// from, used for error messages and the `DEBUG` opcode's line reporting.
type DebugInfo struct {
	Line     int
	Column   int
	File     string
	Function string
}

// Chunk is one function's opcode stream: a flat array of word-sized
// slots (an opcode followed immediately by its operands, no alignment
// gaps — §6 of the bytecode layout) plus the constant pool it indexes
// into and a parallel per-word debug table.
type Chunk struct {
	Code      []int
	Constants []interface{}
	Debug     []DebugInfo
}

func NewChunk() *Chunk {
	return &Chunk{}
}

// WriteOp appends an opcode word and returns its offset, used by callers
// that need to patch a later operand (e.g. the label manager).
func (c *Chunk) WriteOp(op OpCode, debug DebugInfo) int {
	offset := len(c.Code)
	c.Code = append(c.Code, int(op))
	c.Debug = append(c.Debug, debug)
	return offset
}

// EmitOperand appends one raw operand word and returns its offset.
func (c *Chunk) EmitOperand(word int, debug DebugInfo) int {
	offset := len(c.Code)
	c.Code = append(c.Code, word)
	c.Debug = append(c.Debug, debug)
	return offset
}

// PatchOperand overwrites the word at offset, used to fix up a jump
// target once the label manager places a label.
func (c *Chunk) PatchOperand(offset int, word int) {
	c.Code[offset] = word
}

// ReadOperand and WriteOperand implement label.Patcher: reading and
// overwriting an already-emitted operand slot, the mechanism a Label's
// patch chain threads through.
func (c *Chunk) ReadOperand(offset int) int { return c.Code[offset] }
func (c *Chunk) WriteOperand(offset int, word int) { c.Code[offset] = word }

// Truncate drops every word from offset onward, used by the peephole
// optimizer to collapse the last one or two emitted instructions.
func (c *Chunk) Truncate(offset int) {
	c.Code = c.Code[:offset]
	c.Debug = c.Debug[:offset]
}

func (c *Chunk) AddConstant(val interface{}) int {
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1
}

func (c *Chunk) GetDebugInfo(ip int) DebugInfo {
	if ip >= 0 && ip < len(c.Debug) {
		return c.Debug[ip]
	}
	return DebugInfo{}
}

// Len reports the current instruction-word count, i.e. the offset the
// next emitted word will occupy.
func (c *Chunk) Len() int {
	return len(c.Code)
}
