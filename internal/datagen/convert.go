package datagen

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// convertOutput applies the optional output coercion declared by a spec's
// "as" tag. Failures never propagate: the pre-conversion value is returned
// unchanged and the problem is logged.
func (g *Generator) convertOutput(raw any, as, format string) any {
	switch strings.ToLower(strings.TrimSpace(as)) {
	case "", "asis", "raw":
		return raw
	case "string", "str":
		return g.stringify(raw, format)
	case "int", "integer":
		if v, ok := coerceInt(raw); ok {
			return v
		}
	case "float", "double":
		if v, ok := coerceFloat(raw); ok {
			return v
		}
	case "bool", "boolean":
		return coerceBool(raw)
	case "hex":
		if v, ok := g.coerceHex(raw); ok {
			return v
		}
	case "upper", "uppercase":
		return strings.ToUpper(g.stringify(raw, format))
	case "lower", "lowercase":
		return strings.ToLower(g.stringify(raw, format))
	case "bytes":
		return []byte(g.stringify(raw, format))
	default:
		g.log.Warn("unknown output type tag, returning value unchanged",
			zap.String("as", as))
		return raw
	}
	g.log.Warn("output conversion failed, returning value unchanged",
		zap.String("as", as), zap.Any("value", raw))
	return raw
}

// stringify renders any generated value as a string, formatting times per
// the configured pattern.
func (g *Generator) stringify(v any, format string) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		if format == "" {
			format = DefaultTimeFormat
		}
		return t.Format(strftimeLayout(format))
	case primitive.ObjectID:
		return t.Hex()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// coerceInt parses an integer out of v, stripping non-numeric characters
// from strings first. An empty residue parses as zero.
func coerceInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case time.Time:
		return t.Unix(), true
	case string:
		digits := stripNonNumeric(t, false)
		if digits == "" || digits == "-" {
			return 0, true
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		digits := stripNonNumeric(t, true)
		if digits == "" || digits == "-" || digits == "." {
			return 0, true
		}
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// coerceBool matches the truthy tokens true/1/yes/y case-insensitively;
// everything else is false.
func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y":
			return true
		}
	}
	return false
}

// coerceHex renders v in compact hexadecimal form. Identifier-like strings
// (UUIDs, object ids) have their separators dropped; arbitrary strings are
// hex-encoded byte-wise.
func (g *Generator) coerceHex(v any) (string, bool) {
	switch t := v.(type) {
	case int:
		return strconv.FormatInt(int64(t), 16), true
	case int64:
		return strconv.FormatInt(t, 16), true
	case float64:
		return strconv.FormatInt(int64(t), 16), true
	case []byte:
		return hex.EncodeToString(t), true
	case time.Time:
		return strconv.FormatInt(t.Unix(), 16), true
	case primitive.ObjectID:
		return t.Hex(), true
	case string:
		compact := strings.ToLower(strings.ReplaceAll(t, "-", ""))
		if compact != "" && isHex(compact) {
			return compact, true
		}
		return hex.EncodeToString([]byte(t)), true
	default:
		return g.stringify(v, ""), false
	}
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}

// stripNonNumeric keeps digits, a single leading minus and, when allowDot is
// set, the first decimal point.
func stripNonNumeric(s string, allowDot bool) string {
	var b strings.Builder
	sawDot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		case r == '.' && allowDot && !sawDot:
			sawDot = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
