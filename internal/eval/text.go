package eval

import (
	"strings"
	"unicode/utf8"

	"github.com/gridstack-labs/gridcalc/internal/value"
)

// tryText handles string functions. All of them go through Value.AsText so
// numbers and booleans render the same way everywhere.
func (l *Library) tryText(name string, args []value.Value, ctx *Context) (value.Value, bool, error) {
	switch name {
	case "CONCAT", "CONCATENATE":
		var sb strings.Builder
		for _, v := range flatten(args) {
			sb.WriteString(v.AsText())
		}
		return value.Text(sb.String()), true, nil

	case "LEFT":
		if err := checkArity(name, args, 1, 2); err != nil {
			return value.Null, true, err
		}
		runes := []rune(args[0].AsText())
		n, err := optionalCount(name, args, 1)
		if err != nil {
			return value.Null, true, err
		}
		if n > len(runes) {
			n = len(runes)
		}
		return value.Text(string(runes[:n])), true, nil

	case "RIGHT":
		if err := checkArity(name, args, 1, 2); err != nil {
			return value.Null, true, err
		}
		runes := []rune(args[0].AsText())
		n, err := optionalCount(name, args, 1)
		if err != nil {
			return value.Null, true, err
		}
		if n > len(runes) {
			n = len(runes)
		}
		return value.Text(string(runes[len(runes)-n:])), true, nil

	case "MID":
		if err := checkArity(name, args, 3, 3); err != nil {
			return value.Null, true, err
		}
		runes := []rune(args[0].AsText())
		startF, err := argNumber(name, args, 1)
		if err != nil {
			return value.Null, true, err
		}
		lengthF, err := argNumber(name, args, 2)
		if err != nil {
			return value.Null, true, err
		}
		start, length := int(startF), int(lengthF)
		if start < 1 {
			return value.Null, true, Errf(KindDomain, "MID: start must be >= 1, got %d", start)
		}
		if length < 0 {
			return value.Null, true, Errf(KindDomain, "MID: length must be >= 0, got %d", length)
		}
		if start > len(runes) {
			return value.Text(""), true, nil
		}
		end := start - 1 + length
		if end > len(runes) {
			end = len(runes)
		}
		return value.Text(string(runes[start-1 : end])), true, nil

	case "TRIM":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		// Collapses internal whitespace runs to a single space in
		// addition to trimming the ends.
		return value.Text(strings.Join(strings.Fields(args[0].AsText()), " ")), true, nil

	case "UPPER":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		return value.Text(strings.ToUpper(args[0].AsText())), true, nil

	case "LOWER":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		return value.Text(strings.ToLower(args[0].AsText())), true, nil

	case "LEN":
		if err := checkArity(name, args, 1, 1); err != nil {
			return value.Null, true, err
		}
		return value.Number(float64(len([]rune(args[0].AsText())))), true, nil

	case "SUBSTITUTE":
		if err := checkArity(name, args, 3, 4); err != nil {
			return value.Null, true, err
		}
		s := args[0].AsText()
		old := args[1].AsText()
		repl := args[2].AsText()
		if old == "" {
			// Substituting the empty string is a no-op.
			return value.Text(s), true, nil
		}
		if len(args) == 4 {
			instF, err := argNumber(name, args, 3)
			if err != nil {
				return value.Null, true, err
			}
			inst := int(instF)
			if inst < 1 {
				return value.Null, true, Errf(KindDomain, "SUBSTITUTE: instance must be >= 1, got %d", inst)
			}
			return value.Text(substituteNth(s, old, repl, inst)), true, nil
		}
		return value.Text(strings.ReplaceAll(s, old, repl)), true, nil

	case "FIND":
		if err := checkArity(name, args, 2, 3); err != nil {
			return value.Null, true, err
		}
		return find(name, args, true)

	case "SEARCH":
		if err := checkArity(name, args, 2, 3); err != nil {
			return value.Null, true, err
		}
		return find(name, args, false)

	case "REPT":
		if err := checkArity(name, args, 2, 2); err != nil {
			return value.Null, true, err
		}
		nf, err := argNumber(name, args, 1)
		if err != nil {
			return value.Null, true, err
		}
		n := int(nf)
		if n < 0 {
			return value.Null, true, Errf(KindDomain, "REPT: count must be >= 0, got %d", n)
		}
		return value.Text(strings.Repeat(args[0].AsText(), n)), true, nil
	}
	return value.Null, false, nil
}

// optionalCount reads an optional non-negative count argument, default 1.
func optionalCount(name string, args []value.Value, i int) (int, error) {
	if len(args) <= i {
		return 1, nil
	}
	nf, err := argNumber(name, args, i)
	if err != nil {
		return 0, err
	}
	n := int(nf)
	if n < 0 {
		return 0, Errf(KindDomain, "%s: count must be >= 0, got %d", name, n)
	}
	return n, nil
}

// substituteNth replaces only the nth occurrence of old.
func substituteNth(s, old, repl string, n int) string {
	idx := 0
	for count := 0; ; count++ {
		found := strings.Index(s[idx:], old)
		if found < 0 {
			return s
		}
		found += idx
		if count+1 == n {
			return s[:found] + repl + s[found+len(old):]
		}
		idx = found + len(old)
	}
}

// find implements FIND (case-sensitive) and SEARCH (case-insensitive),
// returning a 1-based character position or an error when not found.
// Positions count runes so the result composes with MID and LEN.
func find(name string, args []value.Value, caseSensitive bool) (value.Value, bool, error) {
	needle := args[0].AsText()
	runes := []rune(args[1].AsText())
	start := 1
	if len(args) == 3 {
		startF, err := argNumber(name, args, 2)
		if err != nil {
			return value.Null, true, err
		}
		start = int(startF)
		if start < 1 || start > len(runes)+1 {
			return value.Null, true, Errf(KindDomain, "%s: start %d out of range", name, start)
		}
	}
	h, n := string(runes[start-1:]), needle
	if !caseSensitive {
		h, n = strings.ToLower(h), strings.ToLower(n)
	}
	idx := strings.Index(h, n)
	if idx < 0 {
		return value.Null, true, Errf(KindDomain, "%s: %q not found in %q", name, needle, string(runes))
	}
	return value.Number(float64(start + utf8.RuneCountInString(h[:idx]))), true, nil
}
