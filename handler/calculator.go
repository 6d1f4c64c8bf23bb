package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/hupe1980/intentmesh/core"
)

// Calculator evaluates the arithmetic operations extracted for the math
// domain. A plain operation starts a new result; a chained one ("then add 3")
// is applied to the latest result. Results are joined with ", ".
type Calculator struct{}

// NewCalculator creates a Calculator.
func NewCalculator() *Calculator { return &Calculator{} }

// Description implements core.Describer.
func (c *Calculator) Description() string {
	return "Evaluates arithmetic: addition, subtraction, multiplication and division"
}

// Handle implements core.Handler.
func (c *Calculator) Handle(_ context.Context, params core.Params) (string, error) {
	if len(params.Operations) == 0 {
		return "", core.NewHandlerError("NO_OPERATION", "no arithmetic operation found")
	}

	var results []float64
	for _, op := range params.Operations {
		left := op.Left
		if op.Chained {
			if len(results) == 0 {
				return "", core.NewHandlerError("NO_OPERAND", fmt.Sprintf("nothing to apply %s to", op))
			}
			left = results[len(results)-1]
		}

		v, err := evaluate(op.Operator, left, op.Right)
		if err != nil {
			return "", err
		}
		if op.Chained {
			results[len(results)-1] = v
		} else {
			results = append(results, v)
		}
	}

	parts := make([]string, len(results))
	for i, v := range results {
		parts[i] = core.FormatNumber(v)
	}
	return strings.Join(parts, ", "), nil
}

func evaluate(op core.Operator, left, right float64) (float64, error) {
	if op == core.OpDivide && right == 0 {
		return 0, core.NewHandlerError("DIVISION_BY_ZERO", "division by zero")
	}
	expr, err := govaluate.NewEvaluableExpression("left " + string(op) + " right")
	if err != nil {
		return 0, &core.HandlerError{Code: "INVALID_OPERATION", Message: fmt.Sprintf("operator %q", op), Cause: err}
	}
	out, err := expr.Evaluate(map[string]interface{}{"left": left, "right": right})
	if err != nil {
		return 0, &core.HandlerError{Code: "EVALUATION_ERROR", Message: err.Error(), Cause: err}
	}
	v, ok := out.(float64)
	if !ok {
		return 0, core.NewHandlerError("EVALUATION_ERROR", fmt.Sprintf("unexpected result %v", out))
	}
	return v, nil
}
