package natives

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/artuross/formula-engine/internal/formula/value"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// leadingNumber matches the numeric prefix used by floatval and intval.
var leadingNumber = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

func concat(_ context.Context, args []value.Value) (value.Value, error) {
	var sb strings.Builder

	for _, arg := range args {
		sb.WriteString(value.ToString(arg))
	}

	return value.String(sb.String()), nil
}

func floatval(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	return value.Number(toFloat(args[0])), nil
}

func intval(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	return value.Number(math.Trunc(toFloat(args[0]))), nil
}

// toFloat converts leniently: strings contribute their numeric prefix and
// anything without one becomes 0.
func toFloat(v value.Value) float64 {
	if s, ok := v.(value.String); ok {
		prefix := strings.TrimSpace(leadingNumber.FindString(string(s)))

		number, err := strconv.ParseFloat(prefix, 64)
		if err != nil {
			return 0
		}

		return number
	}

	number, ok := value.ToNumber(v)
	if !ok {
		return 0
	}

	return number
}

func isNumeric(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	switch arg := args[0].(type) {
	case value.Number:
		return value.Bool(true), nil

	case value.String:
		trimmed := strings.TrimSpace(string(arg))
		if trimmed == "" {
			return value.Bool(false), nil
		}

		_, err := strconv.ParseFloat(trimmed, 64)

		return value.Bool(err == nil), nil

	default:
		return value.Bool(false), nil
	}
}

// numberFormat groups thousands and fixes the number of decimals, with
// optional custom separators.
func numberFormat(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 4); err != nil {
		return nil, err
	}

	amount, err := numberArg(args, 0)
	if err != nil {
		return nil, err
	}

	decimals := 0
	if len(args) > 1 {
		d, err := numberArg(args, 1)
		if err != nil {
			return nil, err
		}

		decimals = max(int(d), 0)
	}

	decimalPoint := stringArg(args, 2, ".")
	thousands := stringArg(args, 3, ",")

	printer := message.NewPrinter(language.English)
	formatted := printer.Sprintf("%v", number.Decimal(roundHalfUp(amount, decimals), number.Scale(decimals)))

	replacer := strings.NewReplacer(",", thousands, ".", decimalPoint)

	return value.String(replacer.Replace(formatted)), nil
}

func roundHalfUp(amount float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(amount*scale) / scale
}

func strReplace(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 3, 3); err != nil {
		return nil, err
	}

	search := value.ToString(args[0])
	subject := value.ToString(args[2])

	if search == "" {
		return value.String(subject), nil
	}

	return value.String(strings.ReplaceAll(subject, search, value.ToString(args[1]))), nil
}

func strlen(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	return value.Number(utf8.RuneCountInString(value.ToString(args[0]))), nil
}

func strtolower(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	return value.String(strings.ToLower(value.ToString(args[0]))), nil
}

func strtoupper(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	return value.String(strings.ToUpper(value.ToString(args[0]))), nil
}

// substr counts in characters. A negative start counts from the end and a
// negative length leaves that many characters off the end.
func substr(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 2, 3); err != nil {
		return nil, err
	}

	runes := []rune(value.ToString(args[0]))
	size := len(runes)

	s, err := numberArg(args, 1)
	if err != nil {
		return nil, err
	}

	start := int(s)
	if start < 0 {
		start = max(size+start, 0)
	}

	if start >= size {
		return value.String(""), nil
	}

	end := size
	if len(args) == 3 {
		if _, isNull := args[2].(value.Null); !isNull {
			l, err := numberArg(args, 2)
			if err != nil {
				return nil, err
			}

			length := int(l)
			if length < 0 {
				end = size + length
			} else {
				end = min(start+length, size)
			}
		}
	}

	if end <= start {
		return value.String(""), nil
	}

	return value.String(runes[start:end]), nil
}

func trim(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 2); err != nil {
		return nil, err
	}

	subject := value.ToString(args[0])

	if len(args) == 2 {
		return value.String(strings.Trim(subject, value.ToString(args[1]))), nil
	}

	return value.String(strings.TrimSpace(subject)), nil
}
