package datagen

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// providerFunc is one named realistic-data operation. Arguments arrive as the
// parameter's configured args map; each operation pulls out what it
// understands and ignores the rest.
type providerFunc func(f *gofakeit.Faker, args map[string]any) any

// providerOps is the closed adapter surface for the first link of a provider
// chain. Keys are normalized (lowercase, underscores stripped), so
// "faker.first_name" and "faker.firstname" resolve to the same operation.
var providerOps = map[string]providerFunc{
	"firstname": func(f *gofakeit.Faker, _ map[string]any) any { return f.FirstName() },
	"lastname":  func(f *gofakeit.Faker, _ map[string]any) any { return f.LastName() },
	"fullname":  func(f *gofakeit.Faker, _ map[string]any) any { return f.Name() },
	"name":      func(f *gofakeit.Faker, _ map[string]any) any { return f.Name() },
	"email":     func(f *gofakeit.Faker, _ map[string]any) any { return f.Email() },
	"username":  func(f *gofakeit.Faker, _ map[string]any) any { return f.Username() },
	"phone":     func(f *gofakeit.Faker, _ map[string]any) any { return f.Phone() },
	"msisdn":    func(f *gofakeit.Faker, _ map[string]any) any { return f.Numerify("###########") },
	"ipv4":      func(f *gofakeit.Faker, _ map[string]any) any { return f.IPv4Address() },
	"ipv6":      func(f *gofakeit.Faker, _ map[string]any) any { return f.IPv6Address() },
	"url":       func(f *gofakeit.Faker, _ map[string]any) any { return f.URL() },
	"company":   func(f *gofakeit.Faker, _ map[string]any) any { return f.Company() },
	"city":      func(f *gofakeit.Faker, _ map[string]any) any { return f.City() },
	"country":   func(f *gofakeit.Faker, _ map[string]any) any { return f.Country() },
	"word":      func(f *gofakeit.Faker, _ map[string]any) any { return f.Word() },
	"address": func(f *gofakeit.Faker, _ map[string]any) any {
		return f.Address().Address
	},
	"sentence": func(f *gofakeit.Faker, args map[string]any) any {
		return f.Sentence(argInt(args, "words", 8))
	},
	"text": func(f *gofakeit.Faker, args map[string]any) any {
		return f.Sentence(argInt(args, "max_chars", 40) / 5)
	},
	"datetime": func(f *gofakeit.Faker, _ map[string]any) any {
		return f.DateRange(time.Unix(0, 0).UTC(), time.Now().UTC())
	},
	"dateofbirth": func(f *gofakeit.Faker, _ map[string]any) any {
		now := time.Now().UTC()
		return f.DateRange(now.AddDate(-80, 0, 0), now.AddDate(-18, 0, 0))
	},
	"timestamp": func(f *gofakeit.Faker, _ map[string]any) any {
		t := f.DateRange(time.Unix(0, 0).UTC(), time.Now().UTC())
		return float64(t.UnixMilli()) / 1000.0
	},
}

// lookupProviderOp resolves the first chain link against the adapter surface.
func lookupProviderOp(method string) (providerFunc, bool) {
	op, ok := providerOps[normalizeMethod(method)]
	return op, ok
}

// applyChainLink resolves a follow-up chain method against the previous
// result. The final link receives the configured args; intermediate links are
// called bare. Returns the new value, or ok=false when the method does not
// exist for the result's type.
func applyChainLink(value any, method string, args map[string]any, format string) (any, bool) {
	switch v := value.(type) {
	case time.Time:
		switch normalizeMethod(method) {
		case "timestamp":
			return float64(v.UnixMilli()) / 1000.0, true
		case "isoformat":
			return v.Format(time.RFC3339Nano), true
		case "date":
			return v.Format("2006-01-02"), true
		case "strftime":
			pattern := argString(args, "format", format)
			return v.Format(strftimeLayout(pattern)), true
		}
	case string:
		switch normalizeMethod(method) {
		case "upper":
			return strings.ToUpper(v), true
		case "lower":
			return strings.ToLower(v), true
		case "title":
			return cases.Title(language.English).String(v), true
		case "strip":
			return strings.TrimSpace(v), true
		}
	}
	return value, false
}

func normalizeMethod(method string) string {
	return strings.ReplaceAll(strings.ToLower(method), "_", "")
}

func argInt(args map[string]any, key string, fallback int) int {
	if args == nil {
		return fallback
	}
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

func argString(args map[string]any, key, fallback string) string {
	if args == nil {
		return fallback
	}
	if s, ok := args[key].(string); ok && s != "" {
		return s
	}
	return fallback
}
