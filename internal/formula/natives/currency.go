package natives

import (
	"context"
	"fmt"
	"strings"

	"github.com/artuross/formula-engine/internal/formula/value"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// formatCurrency renders amount with the currency symbol for the locale.
// The code and locale default to the table configuration.
func (c *config) formatCurrency(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 3); err != nil {
		return nil, err
	}

	amount, err := numberArg(args, 0)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(stringArg(args, 1, c.currency))

	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid currency code %q", ErrArgumentType, code)
	}

	locale := stringArg(args, 2, c.language)

	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid locale %q", ErrArgumentType, locale)
	}

	scale, _ := currency.Standard.Rounding(unit)
	printer := message.NewPrinter(tag)

	return value.String(printer.Sprintf("%v", currency.Symbol(unit.Amount(roundHalfUp(amount, scale))))), nil
}
