package interpreter

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/artuross/formula-engine/internal/formula/ast"
	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxHintDistance is the largest edit distance still offered as a hint.
const maxHintDistance = 2

// getMember reads key from object. Missing keys, out of range indices and
// non-container objects yield Null.
func getMember(object, key value.Value) value.Value {
	switch object := object.(type) {
	case value.Map:
		if v, ok := object[value.ToString(key)]; ok {
			return value.Normalize(v)
		}

	case value.List:
		if isLength(key) {
			return value.Number(len(object))
		}

		if index, ok := toIndex(key); ok && index < len(object) {
			return value.Normalize(object[index])
		}

	case value.String:
		if isLength(key) {
			return value.Number(utf8.RuneCountInString(string(object)))
		}

		runes := []rune(string(object))
		if index, ok := toIndex(key); ok && index < len(runes) {
			return value.String(runes[index])
		}
	}

	return value.Null{}
}

// setMember returns object with key set to v. A Null object becomes a map.
func setMember(node ast.Node, object, key, v value.Value) (value.Value, error) {
	switch object := object.(type) {
	case value.Null:
		return value.Map{value.ToString(key): v}, nil

	case value.Map:
		object[value.ToString(key)] = v

		return object, nil

	case value.List:
		index, ok := toIndex(key)
		if !ok || index > len(object) {
			return nil, evaluationError(node, "list index %s is out of range", value.ToString(key))
		}

		if index == len(object) {
			return append(object, v), nil
		}

		object[index] = v

		return object, nil

	default:
		return nil, evaluationError(node, "cannot set a property on a %s", value.TypeOf(object))
	}
}

func isLength(key value.Value) bool {
	s, ok := key.(value.String)
	return ok && s == "length"
}

func toIndex(key value.Value) (int, bool) {
	switch key := key.(type) {
	case value.Number:
	case value.String:
		if key == "" {
			return 0, false
		}

	default:
		return 0, false
	}

	number, ok := value.ToNumber(key)
	if !ok || number < 0 || number != math.Trunc(number) || number > math.MaxInt32 {
		return 0, false
	}

	return int(number), true
}

// suggest picks the known name closest to name: a fuzzy subsequence match
// first, then the smallest edit distance within maxHintDistance.
func suggest(name string, known []string) string {
	if len(known) == 0 {
		return ""
	}

	sort.Strings(known)

	ranks := fuzzy.RankFindFold(name, known)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", maxHintDistance+1
	for _, candidate := range known {
		if distance := fuzzy.LevenshteinDistance(name, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}

	return best
}
