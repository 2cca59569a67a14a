package sandbox

import "sort"

// allowList holds every native a formula may call. It is fixed at compile
// time; nothing in the engine adds names at runtime.
var allowList = map[string]struct{}{
	// arithmetic
	"abs":   {},
	"ceil":  {},
	"floor": {},
	"max":   {},
	"min":   {},
	"pow":   {},
	"round": {},
	"sqrt":  {},

	// conversion and strings
	"concat":          {},
	"floatval":        {},
	"format_currency": {},
	"intval":          {},
	"is_numeric":      {},
	"number_format":   {},
	"str_replace":     {},
	"strlen":          {},
	"strtolower":      {},
	"strtoupper":      {},
	"substr":          {},
	"trim":            {},

	// lists
	"array_keys": {},
	"array_sum":  {},
	"count":      {},
	"in_array":   {},

	// product options
	"get_all_options": {},
	"get_option":      {},

	// dimension calculators
	"calculate_linear_meters": {},
	"calculate_perimeter":     {},
	"calculate_sqm":           {},
	"calculate_volume":        {},

	// read-only table lookups
	"lookup_value": {},
	"query_table":  {},
}

// inputBound lists the natives that receive the input data as an implicit
// final argument.
var inputBound = map[string]struct{}{
	"get_all_options": {},
	"get_option":      {},
}

func IsCallAllowed(name string) bool {
	_, ok := allowList[name]
	return ok
}

// ReceivesInputData reports whether the interpreter appends the input data
// to the arguments of name.
func ReceivesInputData(name string) bool {
	_, ok := inputBound[name]
	return ok
}

// AllowedCalls returns the allow-list, sorted.
func AllowedCalls() []string {
	names := make([]string, 0, len(allowList))
	for name := range allowList {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
