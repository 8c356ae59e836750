package vm

import (
	"bufio"
	"fmt"
	"math/big"
	"os"

	"calc/internal/config"
	calcerrors "calc/internal/errors"
	"calc/internal/prng"
	"calc/internal/value"
)

// builtin is one CALL target: the name it is registered under and the
// Go function implementing it. args holds the call's operands, popped
// from the stack in source order; its length is the argc the compiler
// emitted, which variadic builtins read as len(args).
type builtin func(vm *VM, args []value.Value) value.Value

var builtins map[string]builtin
var builtinNames []string

func init() {
	builtins = map[string]builtin{
		"list":     biList,
		"append":   biAppend,
		"prepend":  biPrepend,
		"pop":      biPop,
		"push":     biPush,
		"size":     biSize,
		"isnull":   biIsNull,
		"str":      biStr,
		"strlen":   biStrlen,
		"abs":      biAbs,
		"sgn":      biSgn,
		"int":      biInt,
		"frac":     biFrac,
		"num":      biNum,
		"den":      biDen,
		"re":       biRe,
		"im":       biIm,
		"conj":     biConj,
		"gcd":      biGcd,
		"lcm":      biLcm,
		"min":      biMin,
		"max":      biMax,
		"sum":      biSum,
		"obj":      biObjBuiltin,
		"assoc":    biAssoc,
		"indices":  biIndices,
		"srandom":  biSrandom,
		"random":   biRandom,
		"randombit": biRandomBit,
		"a_seed":   biASeed,
		"a_random": biARandom,
		"print":    biPrint,
		"fopen":    biFopen,
		"fclose":   biFclose,
		"fgetline": biFgetline,
		"pow":      biPow,
		"config":   biConfig,
	}
	for name := range builtins {
		builtinNames = append(builtinNames, name)
	}
}

// BuiltinIndex returns the CALL operand for a builtin name, used by
// the compiler while emitting OP_CALL. Builtins share one flat index
// space distinct from funcstore's user-function indices.
func BuiltinIndex(name string) (int, bool) {
	for i, n := range builtinNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

func (vm *VM) execBuiltinCall(idx, argc int) {
	if idx < 0 || idx >= len(builtinNames) {
		panic(calcerrors.NewResolveError("call to undefined builtin", "", 0, 0))
	}
	name := builtinNames[idx]
	fn := builtins[name]
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = vm.pop().AsValue()
	}
	vm.push(rvalue(fn(vm, args)))
}

func requireArgc(args []value.Value, n int, name string) {
	if len(args) != n {
		panic(calcerrors.NewArityError(fmt.Sprintf("%s expects %d argument(s)", name, n), "", 0, 0))
	}
}

func biList(vm *VM, args []value.Value) value.Value {
	l := value.NewList()
	for _, a := range args {
		l = value.ListAppend(l, a.Copy())
	}
	return l
}

func biAppend(vm *VM, args []value.Value) value.Value {
	if len(args) < 1 {
		panic(calcerrors.NewArityError("append expects a list and elements", "", 0, 0))
	}
	l := args[0]
	for _, a := range args[1:] {
		l = value.ListAppend(l, a.Copy())
	}
	return l
}

func biPrepend(vm *VM, args []value.Value) value.Value {
	if len(args) < 1 {
		panic(calcerrors.NewArityError("prepend expects a list and elements", "", 0, 0))
	}
	l := args[0]
	for i := len(args) - 1; i >= 1; i-- {
		l = value.ListPrepend(l, args[i].Copy())
	}
	return l
}

func biPush(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 2, "push")
	return value.ListPrepend(args[0], args[1].Copy())
}

func biPop(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "pop")
	_, v := value.ListRemoveFront(args[0])
	return v
}

func biSize(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "size")
	switch args[0].Kind {
	case value.KindList:
		return value.Int(int64(value.AsListOperand(args[0]).Size()))
	case value.KindString:
		return value.Int(int64(len(args[0].String())))
	case value.KindMatrix:
		return value.Int(int64(len(args[0].AsMatrixOperand().Elems)))
	case value.KindAssociation:
		return value.Int(int64(args[0].AsAssocOperand().Count()))
	default:
		return value.Int(1)
	}
}

func biIsNull(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "isnull")
	return value.Int(b2i(args[0].IsNull()))
}

func biStr(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "str")
	return value.NewString(args[0].String())
}

func biStrlen(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "strlen")
	return value.Int(int64(len(args[0].String())))
}

func biAbs(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "abs")
	a := args[0]
	if a.Kind == value.KindInteger {
		if a.Int < 0 {
			return value.Int(-a.Int)
		}
		return a
	}
	if value.Compare(a, value.Int(0)) < 0 {
		return value.Unary(value.UnNegate, a)
	}
	return a
}

func biSgn(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "sgn")
	c := value.Compare(args[0], value.Int(0))
	switch {
	case c < 0:
		return value.Int(-1)
	case c > 0:
		return value.Int(1)
	default:
		return value.Int(0)
	}
}

func biInt(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "int")
	return value.Binary(value.BinQuo, args[0], value.Int(1))
}

func biFrac(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "frac")
	whole := value.Binary(value.BinQuo, args[0], value.Int(1))
	return value.Binary(value.BinSub, args[0], whole)
}

func biNum(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "num")
	return value.RationalNum(args[0])
}

func biDen(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "den")
	return value.RationalDen(args[0])
}

func biRe(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "re")
	return value.ComplexRe(args[0])
}

func biIm(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "im")
	return value.ComplexIm(args[0])
}

func biConj(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "conj")
	return value.ComplexConj(args[0])
}

func biGcd(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 2, "gcd")
	a, b := intOf(args[0]), intOf(args[1])
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	return value.NewRational(g, big.NewInt(1))
}

func biLcm(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 2, "lcm")
	a, b := intOf(args[0]), intOf(args[1])
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	if g.Sign() == 0 {
		return value.Int(0)
	}
	l := new(big.Int).Div(new(big.Int).Mul(a, b), g)
	return value.NewRational(new(big.Int).Abs(l), big.NewInt(1))
}

func intOf(v value.Value) *big.Int {
	if v.Kind == value.KindInteger {
		return big.NewInt(v.Int)
	}
	return value.RationalNum(v)
}

func biMin(vm *VM, args []value.Value) value.Value {
	if len(args) == 0 {
		panic(calcerrors.NewArityError("min expects at least one argument", "", 0, 0))
	}
	best := args[0]
	for _, a := range args[1:] {
		if value.Compare(a, best) < 0 {
			best = a
		}
	}
	return best
}

func biMax(vm *VM, args []value.Value) value.Value {
	if len(args) == 0 {
		panic(calcerrors.NewArityError("max expects at least one argument", "", 0, 0))
	}
	best := args[0]
	for _, a := range args[1:] {
		if value.Compare(a, best) > 0 {
			best = a
		}
	}
	return best
}

func biSum(vm *VM, args []value.Value) value.Value {
	total := value.Int(0)
	for _, a := range args {
		total = value.Binary(value.BinAdd, total, a)
	}
	return total
}

func biObjBuiltin(vm *VM, args []value.Value) value.Value {
	if len(args) == 0 {
		panic(calcerrors.NewArityError("obj expects a type name", "", 0, 0))
	}
	name := args[0].String()
	typeID, ok := vm.Objects.Lookup(name)
	if !ok {
		panic(calcerrors.NewResolveError("undefined object type "+name, "", 0, 0))
	}
	td := vm.Objects.Get(typeID)
	obj := value.NewObject(typeID, len(td.Elements))
	operand := obj.AsObjectOperand()
	for i, a := range args[1:] {
		if i < len(operand.Elems) {
			operand.Elems[i] = a.Copy()
		}
	}
	return obj
}

func biAssoc(vm *VM, args []value.Value) value.Value {
	return value.NewAssociation()
}

func biIndices(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "indices")
	l := value.NewList()
	assoc := args[0].AsAssocOperand()
	for _, k := range assoc.Keys() {
		tup := value.NewList()
		for _, kv := range k {
			tup = value.ListAppend(tup, kv.Copy())
		}
		l = value.ListAppend(l, tup)
	}
	return l
}

func biSrandom(vm *VM, args []value.Value) value.Value {
	switch len(args) {
	case 1:
		vm.Blum = prng.Seed(vm.Blum, intOf(args[0]))
	case 2:
		vm.Blum = prng.SeedWithGenerator(intOf(args[0]), intOf(args[1]))
	case 4:
		trials := int(intOf(args[3]).Int64())
		vm.Blum = prng.SeedWithPrimes(intOf(args[0]), intOf(args[1]), intOf(args[2]), trials)
	default:
		panic(calcerrors.NewArityError("srandom expects 1, 2 or 4 arguments", "", 0, 0))
	}
	return value.NewBlumRand(value.CloneBlumRand(vm.Blum))
}

func biRandom(vm *VM, args []value.Value) value.Value {
	switch len(args) {
	case 0:
		return value.Int(int64(prng.Bits(vm.Blum, 1)))
	case 1:
		hi := intOf(args[0]).Int64()
		return value.Int(prng.Random(vm.Blum, 0, hi))
	case 2:
		lo := intOf(args[0]).Int64()
		hi := intOf(args[1]).Int64()
		return value.Int(prng.Random(vm.Blum, lo, hi))
	default:
		panic(calcerrors.NewArityError("random expects 0, 1 or 2 arguments", "", 0, 0))
	}
}

func biRandomBit(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "randombit")
	n := int(intOf(args[0]).Int64())
	return value.Int(int64(prng.Bits(vm.Blum, n)))
}

func biASeed(vm *VM, args []value.Value) value.Value {
	var seed uint64
	if len(args) == 1 {
		seed = uint64(intOf(args[0]).Int64())
	}
	vm.Additive = value.DefaultAdditiveRand()
	vm.Additive.State = seed ^ 0x9E3779B97F4A7C15
	return value.Int(0)
}

func biARandom(vm *VM, args []value.Value) value.Value {
	vm.Additive.State = vm.Additive.State*6364136223846793005 + 1442695040888963407
	return value.Int(int64(vm.Additive.State >> 33))
}

func biPrint(vm *VM, args []value.Value) value.Value {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(vm.Stdout, " ")
		}
		fmt.Fprint(vm.Stdout, a.String())
	}
	fmt.Fprintln(vm.Stdout)
	return value.Null
}

func biFopen(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 2, "fopen")
	name := args[0].String()
	mode := args[1].String()
	var flag int
	switch mode {
	case "r":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		panic(calcerrors.NewDomainError("unrecognized file mode "+mode, "", 0, 0))
	}
	f, err := os.OpenFile(name, flag, 0644)
	if err != nil {
		panic(calcerrors.NewIOError(err.Error()))
	}
	return value.NewFile(f, mode)
}

func biFclose(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "fclose")
	file := args[0].AsFileOperand()
	if err := file.Handle.Close(); err != nil {
		panic(calcerrors.NewIOError(err.Error()))
	}
	return value.Int(0)
}

func biFgetline(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 1, "fgetline")
	file := args[0].AsFileOperand()
	if file.Reader == nil {
		file.Reader = bufio.NewReader(file.Handle)
	}
	line, err := file.Reader.ReadString('\n')
	if err != nil && line == "" {
		return value.Null
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return value.NewString(line)
}

// configKeys maps a config() builtin's item name to the SETCONFIG
// operand id applyConfig expects.
var configKeys = map[string]int{
	"redecl_warn":  ConfigRedeclWarn,
	"dupvar_warn":  ConfigDupvarWarn,
	"resource":     ConfigResourceDebug,
	"tilde_ok":     ConfigTildeOk,
	"maxscan":      ConfigMaxScanCount,
	"stoponerror":  ConfigStopOnError,
	"mode":         ConfigClassic,
}

func configValueFor(key int, c *config.Config) value.Value {
	switch key {
	case ConfigRedeclWarn:
		return value.Int(b2i(c.RedeclWarn))
	case ConfigDupvarWarn:
		return value.Int(b2i(c.DupvarWarn))
	case ConfigResourceDebug:
		return value.Int(int64(c.ResourceDebug))
	case ConfigTildeOk:
		return value.Int(b2i(c.TildeOk))
	case ConfigMaxScanCount:
		return value.Int(int64(c.MaxScanCount))
	case ConfigStopOnError:
		return value.Int(b2i(c.StopOnError))
	case ConfigClassic:
		return value.Int(b2i(c.Classic))
	default:
		return value.Null
	}
}

// biConfig implements `config(item)` / `config(item, newvalue)`: reads
// or mutates one named field of the live configuration and returns its
// old value. Writes to the named items go through applyConfig (the same
// dispatcher OP_SETCONFIG itself uses); "epsilon" is the exception and
// is stored into vm.Config.Epsilon directly.
func biConfig(vm *VM, args []value.Value) value.Value {
	if len(args) < 1 || len(args) > 2 {
		panic(calcerrors.NewArityError("config expects 1 or 2 arguments", "", 0, 0))
	}
	item := args[0].String()
	if item == "epsilon" {
		old := vm.Config.Epsilon
		if len(args) == 2 {
			vm.Config.Epsilon = args[1].Copy()
		}
		return old
	}
	key, ok := configKeys[item]
	if !ok {
		panic(calcerrors.NewDomainError("unrecognized config item "+item, "", 0, 0))
	}
	old := configValueFor(key, vm.Config)
	if len(args) == 2 {
		vm.applyConfig(key, args[1])
	}
	return old
}

func biPow(vm *VM, args []value.Value) value.Value {
	requireArgc(args, 2, "pow")
	a, n := args[0], args[1]
	if a.Kind == value.KindObject {
		return vm.Objects.Pow(vm.Funcs, vm, a, intOf(n).Int64())
	}
	exp := intOf(n).Int64()
	result := value.Int(1)
	base := a
	neg := exp < 0
	if neg {
		exp = -exp
	}
	for exp > 0 {
		if exp&1 == 1 {
			result = value.Binary(value.BinMul, result, base)
		}
		base = value.Binary(value.BinMul, base, base)
		exp >>= 1
	}
	if neg {
		result = value.Unary(value.UnInvert, result)
	}
	return result
}
