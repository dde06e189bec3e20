package xlgrid

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprEnv is the environment an Expr criteria sees for one cell.
type exprEnv struct {
	Value    any     `expr:"value"`    // nil, string, float64, bool, time.Time or error code string
	Text     string  `expr:"text"`     // display form
	Num      float64 `expr:"num"`      // numeric form, 0 when not numeric
	IsNumber bool    `expr:"isNumber"` // whether num is meaningful
	Empty    bool    `expr:"empty"`
	Row      int     `expr:"row"`
	Col      int     `expr:"col"`
}

func newExprEnv(v Value, row, col int) exprEnv {
	env := exprEnv{Text: v.String(), Empty: v.isNull(), Row: row, Col: col}
	switch v.Kind() {
	case CellBlank:
	case CellString, CellRichText:
		env.Value = env.Text
	case CellNumber:
		env.Value = v.num
	case CellBoolean:
		env.Value = v.b
	case CellDate:
		env.Value = v.t
	case CellError:
		env.Value = v.str
	}
	env.Num, env.IsNumber = v.number()
	return env
}

// programs caches compiled criteria; compiled programs are immutable and
// safe to share between sheets.
var programs sync.Map // expression string → *vm.Program

func compileExpr(expression string) (*vm.Program, error) {
	if cached, ok := programs.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", expression, err)
	}
	programs.Store(expression, program)
	return program, nil
}

// runExpr evaluates a compiled criteria. Evaluation errors, such as
// comparing text with a number, count as a failed match.
func runExpr(program *vm.Program, env exprEnv) bool {
	out, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	b, _ := out.(bool)
	return b
}
