package extensibility

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/comalice/fwsm"
)

// LoggingGuard wraps a guard and logs each evaluation at debug level.
type LoggingGuard struct {
	name   string
	inner  fwsm.Guard
	logger *slog.Logger
}

// NewLoggingGuard creates a LoggingGuard wrapping inner.
func NewLoggingGuard(name string, inner fwsm.Guard, logger *slog.Logger) *LoggingGuard {
	return &LoggingGuard{name: name, inner: inner, logger: logger}
}

// Eval delegates to the inner guard.
func (g *LoggingGuard) Eval(d *fwsm.Descriptor) bool {
	ok := g.inner.Eval(d)
	g.logger.Debug("guard evaluated",
		slog.String("machine", d.Name()),
		slog.String("guard", g.name),
		slog.Bool("result", ok),
	)
	return ok
}

// Values is application data that expression guards can read.
type Values interface {
	Value(key string) (any, bool)
}

// Vars is a map implementing Values.
type Vars map[string]any

func (v Vars) Value(key string) (any, bool) {
	x, ok := v[key]
	return x, ok
}

// Expression is a guard of the form "key op literal" evaluated against the
// descriptor's data, which must implement Values. Operators are ==, !=, <,
// <=, > and >=. Literals are true, false, nil, numbers or bare strings.
// Missing keys and mismatched types evaluate to false.
type Expression struct {
	key string
	op  string
	lit any
}

// ParseExpression parses expr into an Expression guard.
func ParseExpression(expr string) (*Expression, error) {
	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return nil, errors.Newf("expression %q: want \"key op value\"", expr)
	}
	e := &Expression{key: parts[0], op: parts[1]}
	switch e.op {
	case "==", "!=", "<", "<=", ">", ">=":
	default:
		return nil, errors.Newf("expression %q: unknown operator %q", expr, e.op)
	}
	switch parts[2] {
	case "true":
		e.lit = true
	case "false":
		e.lit = false
	case "nil":
		e.lit = nil
	default:
		if f, err := strconv.ParseFloat(parts[2], 64); err == nil {
			e.lit = f
		} else {
			e.lit = parts[2]
		}
	}
	if _, numeric := e.lit.(float64); !numeric && e.op != "==" && e.op != "!=" {
		return nil, errors.Newf("expression %q: %s needs a number", expr, e.op)
	}
	return e, nil
}

// Eval evaluates the expression against d.Data().
func (e *Expression) Eval(d *fwsm.Descriptor) bool {
	vals, ok := d.Data().(Values)
	if !ok {
		return false
	}
	v, ok := vals.Value(e.key)
	if !ok {
		return false
	}
	switch e.op {
	case "==":
		return e.equal(v)
	case "!=":
		return !e.equal(v)
	}
	x, ok := toFloat(v)
	if !ok {
		return false
	}
	y := e.lit.(float64)
	switch e.op {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	default:
		return x >= y
	}
}

func (e *Expression) equal(v any) bool {
	switch lit := e.lit.(type) {
	case nil:
		return v == nil
	case float64:
		x, ok := toFloat(v)
		return ok && x == lit
	case bool:
		b, ok := v.(bool)
		return ok && b == lit
	case string:
		s, ok := v.(string)
		return ok && s == lit
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
