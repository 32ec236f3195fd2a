// Package scripting hosts the Lua VM that defines named damage formulas.
// Scripts build combat.Expr trees with ordinary Lua arithmetic:
//
//	formula("fire_bolt", stat("MAP") * 2 + ln(stat("ATTR_FIRE") + 1))
//
// Formulas are evaluated natively; Lua only runs at load time.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/combat"
)

const exprTypeName = "expr"

// Engine wraps a single gopher-lua VM. Single-goroutine access only.
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	formulas map[string]*combat.Expr
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory: core/ first, then formulas/, then any .lua files at the top
// level. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	for _, dir := range []string{
		filepath.Join(scriptsDir, "core"),
		filepath.Join(scriptsDir, "formulas"),
		scriptsDir,
	} {
		if err := e.loadDir(dir); err != nil {
			e.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	e.log.Info("formulas loaded", zap.Int("count", len(e.formulas)))
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, formulas: make(map[string]*combat.Expr)}
	e.registerAPI()
	return e
}

// loadDir loads all .lua files in a directory in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs one chunk of script source.
func (e *Engine) LoadString(name, src string) error {
	fn, err := e.vm.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}
	e.vm.Push(fn)
	if err := e.vm.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// Formula returns a formula registered by a script.
func (e *Engine) Formula(name string) (*combat.Expr, bool) {
	f, ok := e.formulas[name]
	return f, ok
}

// Names lists registered formulas in order.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.formulas))
	for n := range e.formulas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Evaluate runs a named formula against stats.
func (e *Engine) Evaluate(name string, stats combat.Stats) (float64, bool) {
	f, ok := e.formulas[name]
	if !ok {
		return 0, false
	}
	return combat.Eval(f, stats), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	if e.vm != nil {
		e.vm.Close()
		e.vm = nil
	}
}

// --- Lua API ---

func (e *Engine) registerAPI() {
	L := e.vm
	mt := L.NewTypeMetatable(exprTypeName)
	binary := map[string]combat.Op{
		"__add": combat.OpAdd,
		"__sub": combat.OpSub,
		"__mul": combat.OpMul,
		"__div": combat.OpDiv,
		"__pow": combat.OpPow,
	}
	for meta, op := range binary {
		L.SetField(mt, meta, L.NewFunction(e.binaryFn(op)))
	}
	L.SetField(mt, "__unm", L.NewFunction(func(L *lua.LState) int {
		x := e.checkExpr(L, 1)
		L.Push(e.wrap(combat.Sub(combat.Const(0), x)))
		return 1
	}))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(e.checkExpr(L, 1).String()))
		return 1
	}))

	for name, op := range map[string]combat.Op{
		"add": combat.OpAdd, "sub": combat.OpSub, "mul": combat.OpMul,
		"div": combat.OpDiv, "pow": combat.OpPow,
	} {
		L.SetGlobal(name, L.NewFunction(e.binaryFn(op)))
	}
	L.SetGlobal("ln", L.NewFunction(e.unaryFn(combat.OpLn)))
	L.SetGlobal("log10", L.NewFunction(e.unaryFn(combat.OpLog10)))
	L.SetGlobal("const", L.NewFunction(func(L *lua.LState) int {
		L.Push(e.wrap(combat.Const(float64(L.CheckNumber(1)))))
		return 1
	}))
	L.SetGlobal("stat", L.NewFunction(func(L *lua.LState) int {
		L.Push(e.wrap(combat.Var(strings.ToUpper(L.CheckString(1)))))
		return 1
	}))
	L.SetGlobal("attr", L.NewFunction(func(L *lua.LState) int {
		L.Push(e.wrap(combat.Var("ATTR_" + strings.ToUpper(L.CheckString(1)))))
		return 1
	}))
	L.SetGlobal("res", L.NewFunction(func(L *lua.LState) int {
		L.Push(e.wrap(combat.Var("RES_" + strings.ToUpper(L.CheckString(1)))))
		return 1
	}))
	L.SetGlobal("formula", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if L.GetTop() < 2 {
			f, ok := e.formulas[name]
			if !ok {
				L.ArgError(1, "unknown formula "+name)
				return 0
			}
			L.Push(e.wrap(f))
			return 1
		}
		f := e.checkExpr(L, 2)
		if _, dup := e.formulas[name]; dup {
			e.log.Warn("formula redefined", zap.String("name", name))
		}
		e.formulas[name] = f
		L.Push(e.wrap(f))
		return 1
	}))
}

func (e *Engine) binaryFn(op combat.Op) lua.LGFunction {
	return func(L *lua.LState) int {
		l := e.checkExpr(L, 1)
		r := e.checkExpr(L, 2)
		L.Push(e.wrap(combat.Binary(op, l, r)))
		return 1
	}
}

func (e *Engine) unaryFn(op combat.Op) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(e.wrap(&combat.Expr{Op: op, L: e.checkExpr(L, 1)}))
		return 1
	}
}

func (e *Engine) wrap(x *combat.Expr) *lua.LUserData {
	ud := e.vm.NewUserData()
	ud.Value = x
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(exprTypeName))
	return ud
}

// checkExpr coerces argument n: numbers become constants, strings become
// stat references, expr userdata is unwrapped.
func (e *Engine) checkExpr(L *lua.LState, n int) *combat.Expr {
	switch v := L.Get(n).(type) {
	case lua.LNumber:
		return combat.Const(float64(v))
	case lua.LString:
		return combat.Var(strings.ToUpper(string(v)))
	case *lua.LUserData:
		if x, ok := v.Value.(*combat.Expr); ok {
			return x
		}
	}
	L.ArgError(n, "number, stat name or expr expected")
	return nil
}
