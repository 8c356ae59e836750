// Package vm implements the stack machine executor spec.md §4.7
// describes: one value stack, one frame stack, a current function
// pointer, and a program counter indexing into the current frame's
// opcode chunk. Calling convention, matrix/object/assoc indexing, and
// the cooperative interrupt model all live here.
package vm

import (
	"context"
	"fmt"
	"math/big"
	"os"

	"calc/internal/bytecode"
	"calc/internal/config"
	calcerrors "calc/internal/errors"
	"calc/internal/funcstore"
	"calc/internal/object"
	"calc/internal/prng"
	"calc/internal/symtab"
	"calc/internal/value"
)

const maxStack = 65536
const maxFrames = 1024

// VM is one interpreter's executor. It holds no package-level state: a
// process that wants several independent interpreters constructs one VM
// each (spec.md §5's "concurrency, if desired, is achieved by running
// independent interpreter instances").
type VM struct {
	stack    []StackValue
	frames   []*Frame
	Globals  *symtab.Table
	Funcs    *funcstore.Store
	Objects  *object.Registry
	Config   *config.Config
	Blum     *value.BlumRand
	Additive *value.AdditiveRand
	Stdout   *os.File

	lastLine int
	abort    context.Context
}

func New(globals *symtab.Table, funcs *funcstore.Store, objects *object.Registry) *VM {
	return &VM{
		stack:    make([]StackValue, 0, 1024),
		Globals:  globals,
		Funcs:    funcs,
		Objects:  objects,
		Config:   config.Default(),
		Blum:     prng.Default(),
		Additive: value.DefaultAdditiveRand(),
		Stdout:   os.Stdout,
		abort:    context.Background(),
	}
}

// SetAbortContext installs the cancellation token checked between
// opcodes and before expensive bignum steps, implementing spec.md §5's
// cooperative interrupt model in place of a longjmp.
func (vm *VM) SetAbortContext(ctx context.Context) { vm.abort = ctx }

func (vm *VM) push(s StackValue) {
	if len(vm.stack) >= maxStack {
		panic(calcerrors.NewMemoryError("value stack overflow"))
	}
	vm.stack = append(vm.stack, s)
}

func (vm *VM) pop() StackValue {
	if len(vm.stack) == 0 {
		panic(calcerrors.NewMemoryError("value stack underflow"))
	}
	s := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return s
}

func (vm *VM) peek() StackValue { return vm.stack[len(vm.stack)-1] }

func (vm *VM) frame() *Frame { return vm.frames[len(vm.frames)-1] }

func (vm *VM) readWord() int {
	f := vm.frame()
	w := f.Chunk.Code[f.IP]
	f.IP++
	return w
}

// Execute runs fn with no arguments as a fresh top-level evaluation
// (the `*`-prefixed anonymous eval function the REPL compiles each
// typed expression into).
func (vm *VM) Execute(fn *funcstore.Function) value.Value {
	frame := newFrame(fn, nil)
	frame.Locals = make([]value.Value, fn.LocalCount)
	for i := range frame.Locals {
		frame.Locals[i] = value.Null
	}
	if len(vm.frames) >= maxFrames {
		panic(calcerrors.NewMemoryError("call stack overflow"))
	}
	vm.frames = append(vm.frames, frame)
	return vm.run()
}

// CallFunction implements object.Caller: invoking a resolved user
// operator method from inside the object dispatcher.
func (vm *VM) CallFunction(idx int, args []value.Value) value.Value {
	fn := vm.Funcs.Get(idx)
	if fn == nil {
		panic(calcerrors.NewResolveError("call to undefined function", "", 0, 0))
	}
	frame := newFrame(fn, args)
	frame.Locals = make([]value.Value, fn.LocalCount)
	for i := range frame.Locals {
		frame.Locals[i] = value.Null
	}
	vm.frames = append(vm.frames, frame)
	return vm.run()
}

// run executes opcodes until the frame pushed by the most recent
// Execute/CallFunction call returns.
func (vm *VM) run() value.Value {
	baseFrame := len(vm.frames)
	var result value.Value = value.Null
	for len(vm.frames) >= baseFrame {
		select {
		case <-vm.abort.Done():
			panic(calcerrors.NewInterruptError("interrupted"))
		default:
		}

		f := vm.frame()
		if f.IP >= len(f.Chunk.Code) {
			// implicit return at end of opcode stream
			result = vm.doReturn()
			continue
		}
		op := bytecode.OpCode(vm.readWord())
		if r, returned := vm.step(op); returned {
			result = r
			if len(vm.frames) < baseFrame {
				return result
			}
		}
	}
	return result
}

func (vm *VM) doReturn() value.Value {
	f := vm.frame()
	var ret value.Value
	if len(vm.stack) > 0 {
		ret = vm.pop().AsValue()
	} else {
		ret = value.Null
	}
	f.free()
	vm.frames = vm.frames[:len(vm.frames)-1]
	return ret
}

// step executes one opcode. It returns (value, true) only when a
// RETURN (explicit or implicit) just popped a frame.
func (vm *VM) step(op bytecode.OpCode) (value.Value, bool) {
	f := vm.frame()
	switch op {
	case bytecode.OpNoop:

	case bytecode.OpZero:
		vm.push(rvalue(value.Int(0)))
	case bytecode.OpOne:
		vm.push(rvalue(value.Int(1)))
	case bytecode.OpUndef:
		vm.push(rvalue(value.Null))
	case bytecode.OpOldValue:
		vm.push(rvalue(f.Saved))

	case bytecode.OpNumber:
		idx := vm.readWord()
		vm.push(rvalue(constantValue(f.Chunk, idx)))
	case bytecode.OpImaginary:
		idx := vm.readWord()
		vm.push(rvalue(value.NewImaginary(constantValue(f.Chunk, idx))))
	case bytecode.OpString:
		idx := vm.readWord()
		vm.push(rvalue(constantValue(f.Chunk, idx)))

	case bytecode.OpLocalAddr:
		slot := vm.readWord()
		vm.push(lvalue(&Address{Kind: AddrLocal, Frame: f, Slot: slot}))
	case bytecode.OpLocalValue:
		slot := vm.readWord()
		vm.push(rvalue(f.Locals[slot]))
	case bytecode.OpParamAddr:
		slot := vm.readWord()
		vm.push(lvalue(&Address{Kind: AddrParam, Frame: f, Slot: slot}))
	case bytecode.OpParamValue:
		slot := vm.readWord()
		vm.push(rvalue(f.Params[slot]))
	case bytecode.OpArgValue:
		n := vm.readWord()
		if n < len(f.Params) {
			vm.push(rvalue(f.Params[n]))
		} else {
			vm.push(rvalue(value.Null))
		}

	case bytecode.OpGlobalAddr:
		nameIdx := vm.readWord()
		name := f.Chunk.Constants[nameIdx].(string)
		g := vm.Globals.LookupGlobal(name)
		if g == nil {
			g = vm.Globals.DeclareGlobal(name, 0, 0)
		}
		vm.push(lvalue(&Address{Kind: AddrGlobal, Global: g}))
	case bytecode.OpGlobalValue:
		nameIdx := vm.readWord()
		name := f.Chunk.Constants[nameIdx].(string)
		g := vm.Globals.LookupGlobal(name)
		if g == nil {
			panic(calcerrors.NewResolveError("undefined variable "+name, "", 0, 0))
		}
		vm.push(rvalue(g.Value))

	case bytecode.OpGetValue:
		top := vm.pop()
		vm.push(rvalue(top.AsValue()))

	case bytecode.OpSave:
		f.Saved = vm.peek().AsValue().Copy()
	case bytecode.OpSaveVal:
		f.SaveOn = vm.readWord() != 0

	case bytecode.OpIndexAddr:
		vm.execIndexAddr()
	case bytecode.OpFastIndexAddr:
		vm.execFastIndexAddr()
	case bytecode.OpElemAddr:
		vm.execElemAddr()

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv,
		bytecode.OpQuo, bytecode.OpMod, bytecode.OpPower:
		vm.execBinaryArith(op)
	case bytecode.OpNegate, bytecode.OpPlus, bytecode.OpInvert, bytecode.OpSquare:
		vm.execUnaryArith(op)

	case bytecode.OpAnd:
		b, a := vm.pop().AsValue(), vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Truthy() && b.Truthy()))))
	case bytecode.OpOr:
		b, a := vm.pop().AsValue(), vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Truthy() || b.Truthy()))))
	case bytecode.OpNot:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(!a.Truthy()))))

	case bytecode.OpEq:
		b, a := vm.pop().AsValue(), vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(value.Compare(a, b) == 0))))
	case bytecode.OpNe:
		b, a := vm.pop().AsValue(), vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(value.Compare(a, b) != 0))))
	case bytecode.OpLt:
		b, a := vm.pop().AsValue(), vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(value.Compare(a, b) < 0))))
	case bytecode.OpLe:
		b, a := vm.pop().AsValue(), vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(value.Compare(a, b) <= 0))))
	case bytecode.OpGt:
		b, a := vm.pop().AsValue(), vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(value.Compare(a, b) > 0))))
	case bytecode.OpGe:
		b, a := vm.pop().AsValue(), vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(value.Compare(a, b) >= 0))))
	case bytecode.OpCmp:
		b, a := vm.pop().AsValue(), vm.pop().AsValue()
		vm.push(rvalue(value.Int(int64(value.Compare(a, b)))))
	case bytecode.OpTest:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Truthy()))))
	case bytecode.OpIsNull:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.IsNull()))))

	case bytecode.OpJump:
		target := vm.readWord()
		f.IP = target
	case bytecode.OpJumpZ:
		target := vm.readWord()
		if !vm.pop().AsValue().Truthy() {
			f.IP = target
		}
	case bytecode.OpJumpNZ:
		target := vm.readWord()
		if vm.pop().AsValue().Truthy() {
			f.IP = target
		}
	case bytecode.OpJumpNN:
		target := vm.readWord()
		if !vm.peek().AsValue().IsNull() {
			f.IP = target
		}
	case bytecode.OpCondAndJump:
		target := vm.readWord()
		if !vm.peek().AsValue().Truthy() {
			f.IP = target
		} else {
			vm.pop()
		}
	case bytecode.OpCondOrJump:
		target := vm.readWord()
		if vm.peek().AsValue().Truthy() {
			f.IP = target
		} else {
			vm.pop()
		}
	case bytecode.OpCaseJump:
		target := vm.readWord()
		matchVal := vm.pop().AsValue()
		switchVal := vm.peek().AsValue()
		if value.Compare(matchVal, switchVal) != 0 {
			f.IP = target
		}

	case bytecode.OpUserCall:
		idx := vm.readWord()
		argc := vm.readWord()
		vm.execUserCall(idx, argc)
	case bytecode.OpCall:
		idx := vm.readWord()
		argc := vm.readWord()
		vm.execBuiltinCall(idx, argc)
	case bytecode.OpReturn:
		return vm.doReturn(), true

	case bytecode.OpAssign:
		val := vm.pop().AsValue()
		addr := vm.pop().Addr
		addr.Set(val.Copy())
		vm.push(rvalue(val))
	case bytecode.OpAssignPop:
		val := vm.pop().AsValue()
		addr := vm.pop().Addr
		addr.Set(val)
	case bytecode.OpAssignBack:
		addr := vm.pop().Addr
		val := vm.pop().AsValue()
		addr.Set(val.Copy())
		vm.push(rvalue(val))

	case bytecode.OpPreInc:
		addr := vm.pop().Addr
		nv := value.Binary(value.BinAdd, addr.Get(), value.Int(1))
		addr.Set(nv)
		vm.push(rvalue(nv))
	case bytecode.OpPostInc:
		addr := vm.pop().Addr
		old := addr.Get()
		addr.Set(value.Binary(value.BinAdd, old, value.Int(1)))
		vm.push(rvalue(old))
	case bytecode.OpPreDec:
		addr := vm.pop().Addr
		nv := value.Binary(value.BinSub, addr.Get(), value.Int(1))
		addr.Set(nv)
		vm.push(rvalue(nv))
	case bytecode.OpPostDec:
		addr := vm.pop().Addr
		old := addr.Get()
		addr.Set(value.Binary(value.BinSub, old, value.Int(1)))
		vm.push(rvalue(old))

	case bytecode.OpMatCreate:
		vm.execMatCreate()
	case bytecode.OpObjCreate:
		typeID := vm.readWord()
		td := vm.Objects.Get(typeID)
		vm.push(rvalue(value.NewObject(typeID, len(td.Elements))))
	case bytecode.OpElemInit:
		elemIdx := vm.readWord()
		val := vm.pop().AsValue()
		obj := vm.peek().AsValue().AsObjectOperand()
		obj.Elems[elemIdx] = val

	case bytecode.OpPrint:
		v := vm.pop().AsValue()
		fmt.Fprint(vm.Stdout, v.String())
	case bytecode.OpPrintResult:
		v := vm.peek().AsValue()
		fmt.Fprintln(vm.Stdout, v.String())
	case bytecode.OpPrintEOL:
		fmt.Fprintln(vm.Stdout)
	case bytecode.OpPrintSpace:
		fmt.Fprint(vm.Stdout, " ")
	case bytecode.OpPrintString:
		idx := vm.readWord()
		fmt.Fprint(vm.Stdout, f.Chunk.Constants[idx].(string))
	case bytecode.OpDebug:
		vm.lastLine = vm.readWord()
	case bytecode.OpQuit:
		panic(calcerrors.NewInterruptError("quit"))
	case bytecode.OpAbort:
		panic(calcerrors.NewInterruptError("abort"))
	case bytecode.OpSwap:
		b := vm.pop()
		a := vm.pop()
		vm.push(b)
		vm.push(a)
	case bytecode.OpDuplicate, bytecode.OpDupValue:
		vm.push(rvalue(vm.peek().AsValue().Copy()))
	case bytecode.OpPop:
		vm.pop().AsValue().Free()

	case bytecode.OpElemValue:
		nameIdx := vm.readWord()
		base := vm.pop().AsValue()
		obj := base.AsObjectOperand()
		name := vm.constString(nameIdx)
		td := vm.Objects.Get(obj.TypeID)
		elem, ok := td.ElementIndex(name)
		if !ok {
			panic(calcerrors.NewResolveError("object type "+td.Name+" has no element "+name, "", 0, 0))
		}
		vm.push(rvalue(obj.Elems[elem]))
	case bytecode.OpFastIndexValue:
		k := vm.pop().AsValue().Int
		base := vm.pop().AsValue()
		m := base.AsMatrixOperand()
		offset, err := m.FastOffset(k)
		if err != nil {
			panic(calcerrors.NewDomainError(err.Error(), "", 0, 0))
		}
		vm.push(rvalue(m.Elems[offset]))
	case bytecode.OpInitFill:
		n := vm.readWord()
		fills := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			fills[i] = vm.pop().AsValue()
		}
		m := vm.peek().AsValue().AsMatrixOperand()
		for i := range m.Elems {
			m.Elems[i].Free()
			m.Elems[i] = fills[i%len(fills)].Copy()
		}
	case bytecode.OpShow:
		fmt.Fprintf(vm.Stdout, "functions: %v\n", vm.Funcs.Names())
	case bytecode.OpInitStatic:
		nameIdx := vm.readWord()
		name := f.Chunk.Constants[nameIdx].(string)
		if vm.Globals.LookupGlobal(name) == nil {
			vm.Globals.DeclareGlobal(name, 1, 0)
		}

	case bytecode.OpSetConfig:
		key := vm.readWord()
		val := vm.pop().AsValue()
		vm.applyConfig(key, val)
	case bytecode.OpSetEpsilon:
		val := vm.pop().AsValue()
		vm.Config.Epsilon.Free()
		vm.Config.Epsilon = val

	case bytecode.OpIsNum:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindInteger || a.Kind == value.KindRational || a.Kind == value.KindComplex))))
	case bytecode.OpIsMat:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindMatrix))))
	case bytecode.OpIsStr:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindString))))
	case bytecode.OpIsList:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindList))))
	case bytecode.OpIsAssoc:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindAssociation))))
	case bytecode.OpIsObj:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindObject))))
	case bytecode.OpIsFile:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindFile))))
	case bytecode.OpIsRand:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindAdditiveRand))))
	case bytecode.OpIsConfig:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindConfigSnapshot))))
	case bytecode.OpIsBlock:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindBlock))))
	case bytecode.OpIsOctet:
		a := vm.pop().AsValue()
		vm.push(rvalue(value.Int(b2i(a.Kind == value.KindOctet))))
	case bytecode.OpIsPtr:
		a := vm.pop().AsValue()
		isPtr := a.Kind == value.KindValuePointer || a.Kind == value.KindOctetPointer ||
			a.Kind == value.KindStringPointer || a.Kind == value.KindNumberPointer
		vm.push(rvalue(value.Int(b2i(isPtr))))

	default:
		panic(calcerrors.NewTypeError(fmt.Sprintf("unimplemented opcode %s", op), "", 0, 0))
	}
	return value.Null, false
}

// Config key ids SETCONFIG's operand selects among, in declaration
// order of config.Config's fields.
const (
	configRedeclWarn = iota
	configDupvarWarn
	configResourceDebug
	configTildeOk
	configMaxScanCount
	configStopOnError
	configClassic
)

func (vm *VM) applyConfig(key int, val value.Value) {
	switch key {
	case configRedeclWarn:
		vm.Config.RedeclWarn = val.Truthy()
	case configDupvarWarn:
		vm.Config.DupvarWarn = val.Truthy()
	case configResourceDebug:
		vm.Config.ResourceDebug = int(val.Int)
	case configTildeOk:
		vm.Config.TildeOk = val.Truthy()
	case configMaxScanCount:
		vm.Config.MaxScanCount = int(val.Int)
	case configStopOnError:
		vm.Config.StopOnError = val.Truthy()
	case configClassic:
		vm.Config.Classic = val.Truthy()
	}
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// ConstantValue exposes constantValue outside the package. Nothing in
// this module calls it: internal/compiler's constant folding works on
// int64 literals directly.
func ConstantValue(chunk *bytecode.Chunk, idx int) value.Value {
	return constantValue(chunk, idx)
}

// ConfigKey name -> SETCONFIG operand id, used by the config() builtin's
// item table. The compiler has no `config.name = expr` form and emits no
// SETCONFIG.
const (
	ConfigRedeclWarn    = configRedeclWarn
	ConfigDupvarWarn    = configDupvarWarn
	ConfigResourceDebug = configResourceDebug
	ConfigTildeOk       = configTildeOk
	ConfigMaxScanCount  = configMaxScanCount
	ConfigStopOnError   = configStopOnError
	ConfigClassic       = configClassic
)

// constantValue resolves a NUMBER/IMAGINARY/STRING constant pool entry
// to its runtime Value, constructing fresh heap rationals/strings each
// time so that two OP_NUMBER hits of the same constant don't alias a
// mutable heap object.
func constantValue(chunk *bytecode.Chunk, idx int) value.Value {
	switch c := chunk.Constants[idx].(type) {
	case int64:
		return value.Int(c)
	case *big.Int:
		return value.NewRational(c, big.NewInt(1))
	case [2]*big.Int:
		return value.NewRational(c[0], c[1])
	case string:
		return value.NewString(c)
	default:
		panic(calcerrors.NewTypeError("unrecognized constant kind", "", 0, 0))
	}
}

var binOpNames = map[bytecode.OpCode]string{
	bytecode.OpAdd: "add", bytecode.OpSub: "sub", bytecode.OpMul: "mul",
	bytecode.OpDiv: "div", bytecode.OpQuo: "quo", bytecode.OpMod: "mod",
	bytecode.OpPower: "pow",
}

var unOpNames = map[bytecode.OpCode]string{
	bytecode.OpNegate: "neg", bytecode.OpPlus: "plus",
	bytecode.OpInvert: "inv", bytecode.OpSquare: "square",
}

func (vm *VM) execBinaryArith(op bytecode.OpCode) {
	b, a := vm.pop().AsValue(), vm.pop().AsValue()
	if a.Kind == value.KindObject || b.Kind == value.KindObject {
		vm.push(rvalue(vm.Objects.Binary(vm.Funcs, vm, binOpNames[op], a, b)))
		return
	}
	var result value.Value
	switch op {
	case bytecode.OpAdd:
		result = value.Binary(value.BinAdd, a, b)
	case bytecode.OpSub:
		result = value.Binary(value.BinSub, a, b)
	case bytecode.OpMul:
		result = value.Binary(value.BinMul, a, b)
	case bytecode.OpDiv:
		result = value.Binary(value.BinDiv, a, b)
	case bytecode.OpQuo:
		result = value.Binary(value.BinQuo, a, b)
	case bytecode.OpMod:
		result = value.Binary(value.BinMod, a, b)
	case bytecode.OpPower:
		result = value.Binary(value.BinPower, a, b)
	}
	vm.push(rvalue(result))
}

func (vm *VM) execUnaryArith(op bytecode.OpCode) {
	a := vm.pop().AsValue()
	if a.Kind == value.KindObject {
		vm.push(rvalue(vm.Objects.Unary(vm.Funcs, vm, unOpNames[op], a)))
		return
	}
	var result value.Value
	switch op {
	case bytecode.OpNegate:
		result = value.Unary(value.UnNegate, a)
	case bytecode.OpPlus:
		result = value.Unary(value.UnPlus, a)
	case bytecode.OpInvert:
		result = value.Unary(value.UnInvert, a)
	case bytecode.OpSquare:
		result = value.Unary(value.UnSquare, a)
	}
	vm.push(rvalue(result))
}

// execUserCall implements USERCALL's calling convention: pad with
// undefined values up to paramcount, allocate the callee's locals as
// Null, and push the frame.
func (vm *VM) execUserCall(idx, argc int) {
	fn := vm.Funcs.Get(idx)
	if fn == nil {
		panic(calcerrors.NewResolveError("call to undefined function", "", 0, 0))
	}
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = vm.pop().AsValue()
	}
	if argc != fn.ParamCount {
		if argc > fn.ParamCount {
			panic(calcerrors.NewArityError("too many arguments", "", 0, 0))
		}
	}
	frame := newFrame(fn, args)
	frame.Locals = make([]value.Value, fn.LocalCount)
	for i := range frame.Locals {
		frame.Locals[i] = value.Null
	}
	if len(vm.frames) >= maxFrames {
		panic(calcerrors.NewMemoryError("call stack overflow"))
	}
	vm.frames = append(vm.frames, frame)
}

func (vm *VM) execMatCreate() {
	dims := vm.readWord()
	low := make([]int64, dims)
	size := make([]int64, dims)
	for i := dims - 1; i >= 0; i-- {
		size[i] = vm.pop().AsValue().Int
		low[i] = vm.pop().AsValue().Int
	}
	vm.push(rvalue(value.NewMatrix(low, size)))
}

func (vm *VM) execIndexAddr() {
	dims := vm.readWord()
	writeFlag := vm.readWord()
	idx := make([]int64, dims)
	for i := dims - 1; i >= 0; i-- {
		idx[i] = vm.pop().AsValue().Int
	}
	base := vm.pop().AsValue()
	m := base.AsMatrixOperand()
	if writeFlag != 0 {
		m = m.CloneIfShared()
	}
	offset, err := m.Offset(idx)
	if err != nil {
		panic(calcerrors.NewDomainError(err.Error(), "", 0, 0))
	}
	vm.push(StackValue{Addr: &Address{Kind: AddrMatrixCell, Matrix: m, Offset: offset}, Val: m.Elems[offset]})
}

func (vm *VM) execFastIndexAddr() {
	writeFlag := vm.readWord()
	k := vm.pop().AsValue().Int
	base := vm.pop().AsValue()
	m := base.AsMatrixOperand()
	if writeFlag != 0 {
		m = m.CloneIfShared()
	}
	offset, err := m.FastOffset(k)
	if err != nil {
		panic(calcerrors.NewDomainError(err.Error(), "", 0, 0))
	}
	vm.push(StackValue{Addr: &Address{Kind: AddrMatrixCell, Matrix: m, Offset: offset}, Val: m.Elems[offset]})
}

// execElemAddr resolves a `.name` access against the base object's actual
// type: the operand is a constant-pool index for the element name rather
// than a fixed slot, since a single ELEMADDR site can run against any
// object type that declares that element name.
func (vm *VM) execElemAddr() {
	nameIdx := vm.readWord()
	base := vm.pop().AsValue()
	obj := base.AsObjectOperand()
	name := vm.constString(nameIdx)
	td := vm.Objects.Get(obj.TypeID)
	elem, ok := td.ElementIndex(name)
	if !ok {
		panic(calcerrors.NewResolveError("object type "+td.Name+" has no element "+name, "", 0, 0))
	}
	vm.push(StackValue{Addr: &Address{Kind: AddrObjectElem, Object: obj, Elem: elem}, Val: obj.Elems[elem]})
}

func (vm *VM) constString(idx int) string {
	return vm.frame().Chunk.Constants[idx].(string)
}
