package tools

import (
	"context"
	"math"

	"github.com/aitools/aitools/internal/schema"
)

type CalculatorInput struct {
	A        float64 `json:"a"`
	B        float64 `json:"b"`
	Operator string  `json:"operator"`
}

type CalculatorResult struct {
	A        float64 `json:"a"`
	B        float64 `json:"b"`
	Operator string  `json:"operator"`
	Result   float64 `json:"result"`
}

// Calculator evaluates one binary arithmetic operation locally.
func Calculator() (*Tool[CalculatorInput, CalculatorResult], error) {
	return New(Spec[CalculatorInput, CalculatorResult]{
		Name:        "calculator",
		Description: "Evaluate a basic arithmetic operation on two numbers.",
		Input: schema.Object(
			schema.Prop("a", schema.Number("First operand.").Coercible().Require()),
			schema.Prop("b", schema.Number("Second operand.").Coercible().Require()),
			schema.Prop("operator", schema.String("Operator to apply.").OneOf("+", "-", "*", "/", "%", "^").Require()),
		),
		Policy:  PolicyFailLoud,
		Execute: calculate,
	})
}

func calculate(_ context.Context, in CalculatorInput) (CalculatorResult, error) {
	var r float64
	switch in.Operator {
	case "+":
		r = in.A + in.B
	case "-":
		r = in.A - in.B
	case "*":
		r = in.A * in.B
	case "/":
		if in.B == 0 {
			return CalculatorResult{}, Failf("division by zero")
		}
		r = in.A / in.B
	case "%":
		if in.B == 0 {
			return CalculatorResult{}, Failf("division by zero")
		}
		r = math.Mod(in.A, in.B)
	case "^":
		r = math.Pow(in.A, in.B)
	default:
		return CalculatorResult{}, Failf("unsupported operator %q", in.Operator)
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return CalculatorResult{}, Failf("result of %g %s %g is not a finite number", in.A, in.Operator, in.B)
	}
	return CalculatorResult{A: in.A, B: in.B, Operator: in.Operator, Result: r}, nil
}
