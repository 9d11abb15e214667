package toolkit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/hupe1980/agentrun/tool"
)

// calcFuncs is the fixed allow-list of named unary functions.
var calcFuncs = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"log":   math.Log,
	"log10": math.Log10,
	"exp":   math.Exp,
	"floor": math.Floor,
	"ceil":  math.Ceil,
}

// calcConsts is the fixed allow-list of named constants.
var calcConsts = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
}

// NewCalculatorTool returns the calculate tool. Expressions are evaluated by
// a small recursive-descent parser over a fixed grammar (numbers, + - * / **,
// parentheses, unary minus, allow-listed functions and constants); there is
// no dynamic evaluation of any kind.
func NewCalculatorTool() *tool.FunctionTool {
	return tool.NewFunctionTool(
		"calculate",
		"Evaluate a mathematical expression, e.g. 'sqrt(144) + 2**10'.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "An arithmetic expression using + - * / ** ( ) and functions like sqrt, abs, sin, cos, log.",
				},
			},
			"required": []string{"expression"},
		},
		func(_ context.Context, args map[string]any) (string, error) {
			expr, _ := args["expression"].(string)
			return Calculate(expr)
		},
	)
}

// Calculate evaluates an arithmetic expression and formats the result.
// Malformed input returns an error; it never panics.
func Calculate(expression string) (string, error) {
	p := &exprParser{input: expression}
	value, err := p.parse()
	if err != nil {
		return "", fmt.Errorf("error evaluating expression: %w", err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", fmt.Errorf("error evaluating expression: result is not a finite number")
	}
	return strconv.FormatFloat(value, 'g', -1, 64), nil
}

// exprParser is a recursive-descent evaluator with grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = "-" unary | power
//	power   = primary [ "**" unary ]        (right associative)
//	primary = number | const | func "(" expr ")" | "(" expr ")"
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parse() (float64, error) {
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return value, nil
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.consume("+"):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case p.consume("-"):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch {
		// "**" must not be eaten as "*": check it first.
		case p.peek("**"):
			return left, nil
		case p.consume("*"):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.consume("/"):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpaces()
	if p.consume("-") {
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.consume("**") {
		exponent, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exponent), nil
	}
	return base, nil
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	if p.consume("(") {
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if !p.consume(")") {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		return value, nil
	}

	c := p.input[p.pos]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case unicode.IsLetter(rune(c)) || c == '_':
		return p.parseIdent()
	default:
		return 0, fmt.Errorf("invalid character %q at position %d", c, p.pos)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c >= '0' && c <= '9' || c == '.' {
			p.pos++
			continue
		}
		break
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return value, nil
}

func (p *exprParser) parseIdent() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := rune(p.input[p.pos])
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			p.pos++
			continue
		}
		break
	}
	name := strings.ToLower(p.input[start:p.pos])

	if value, ok := calcConsts[name]; ok {
		return value, nil
	}

	fn, ok := calcFuncs[name]
	if !ok {
		return 0, fmt.Errorf("unknown function or constant %q", name)
	}
	p.skipSpaces()
	if !p.consume("(") {
		return 0, fmt.Errorf("function %q requires parentheses", name)
	}
	arg, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if !p.consume(")") {
		return 0, fmt.Errorf("missing closing parenthesis after %q argument", name)
	}
	return fn(arg), nil
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *exprParser) consume(s string) bool {
	if p.peek(s) {
		p.pos += len(s)
		return true
	}
	return false
}
