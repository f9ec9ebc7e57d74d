// Package datagen produces one synthetic value per parameter spec: random
// scalars, identifiers, timestamps, provider-backed realistic data and
// composite strings. Generation never fails upward; anything unrecognized or
// broken degrades to a logged fallback so a single bad parameter cannot
// abort a load run.
package datagen

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/docload/docload/internal/workload"
)

// ValueSet holds the values generated for all parameters of one repetition,
// keyed by parameter name. concat-type parameters read earlier entries from
// it; it is rebuilt fresh every repetition and never persisted.
type ValueSet map[string]any

// Generator owns its randomness, clock and realistic-data provider so runs
// can be made reproducible by seeding explicitly. The zero seed picks a
// time-based one. Safe for concurrent use.
type Generator struct {
	log   *zap.Logger
	faker *gofakeit.Faker
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customizes a Generator.
type Option func(*Generator)

// WithSeed makes random and provider output deterministic for tests.
// Identifier sources (guid) are derived from the same seed; object ids stay
// time-based by construction.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
		g.faker = gofakeit.New(uint64(seed))
	}
}

// WithLogger routes degradation warnings to the given logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New constructs a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		log: zap.NewNop(),
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.faker == nil {
		g.faker = gofakeit.New(0)
	}
	return g
}

type genFunc func(g *Generator, spec workload.ParameterSpec, ctx ValueSet) any

// generators is the dispatch table for the closed Kind set. Provider chains
// and unknown tags are handled before dispatch.
var generators = map[Kind]genFunc{
	KindGUID:                (*Generator).guid,
	KindObjectID:            (*Generator).objectID,
	KindDate:                (*Generator).date,
	KindDateTime:            (*Generator).dateTime,
	KindDateTimeISO:         (*Generator).dateTimeISO,
	KindUnixTimestamp:       (*Generator).unixTimestamp,
	KindUnixTimestampString: (*Generator).unixTimestampString,
	KindRandomInt:           (*Generator).randomInt,
	KindRandomIntString:     (*Generator).randomIntString,
	KindRandomFloat:         (*Generator).randomFloat,
	KindRandomList:          (*Generator).randomList,
	KindRandomBool:          (*Generator).randomBool,
	KindRandomString:        (*Generator).randomString,
	KindConstantString:      (*Generator).constantString,
	KindConstantInt:         (*Generator).constantInt,
	KindConcat:              (*Generator).concat,
}

// Generate produces one value for spec. ctx carries the values generated
// earlier in the same repetition, for concat cross-references. Generate
// never returns an error: unrecognized type tags yield an empty string and a
// log line, conversion failures yield the unconverted value.
func (g *Generator) Generate(spec workload.ParameterSpec, ctx ValueSet) any {
	kind, chain := ParseKind(spec.Type)
	var raw any
	switch kind {
	case KindUnknown:
		g.log.Warn("unknown parameter type tag",
			zap.String("parameter", spec.Name), zap.String("type", spec.Type))
		return ""
	case KindProvider:
		raw = g.provider(spec, chain)
	default:
		raw = generators[kind](g, spec, ctx)
	}
	if spec.As != "" {
		raw = g.convertOutput(raw, spec.As, spec.Format)
	}
	return raw
}

func (g *Generator) timeFormat(spec workload.ParameterSpec) string {
	if spec.Format != "" {
		return spec.Format
	}
	return DefaultTimeFormat
}

func (g *Generator) guid(workload.ParameterSpec, ValueSet) any {
	g.mu.Lock()
	u, err := uuid.NewRandomFromReader(g.rng)
	g.mu.Unlock()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

func (g *Generator) objectID(workload.ParameterSpec, ValueSet) any {
	return primitive.NewObjectID()
}

func (g *Generator) date(workload.ParameterSpec, ValueSet) any {
	return g.now().Format("2006-01-02")
}

// dateTime returns a time truncated to the precision of the configured
// pattern: the current time is rendered through the pattern and parsed back,
// so a "%Y-%m-%d" format yields a midnight timestamp, not a string.
func (g *Generator) dateTime(spec workload.ParameterSpec, _ ValueSet) any {
	layout := strftimeLayout(g.timeFormat(spec))
	now := g.now()
	t, err := time.Parse(layout, now.Format(layout))
	if err != nil {
		g.log.Warn("datetime format did not round-trip, using current time",
			zap.String("parameter", spec.Name), zap.String("format", spec.Format), zap.Error(err))
		return now
	}
	return t
}

func (g *Generator) dateTimeISO(workload.ParameterSpec, ValueSet) any {
	return g.now().Format(time.RFC3339Nano)
}

func (g *Generator) unixTimestamp(workload.ParameterSpec, ValueSet) any {
	return g.now().Unix()
}

func (g *Generator) unixTimestampString(workload.ParameterSpec, ValueSet) any {
	return strconv.FormatInt(g.now().Unix(), 10)
}

// randomInt returns a uniform integer in [start, end] inclusive.
func (g *Generator) randomInt(spec workload.ParameterSpec, _ ValueSet) any {
	lo, hi := int64(spec.Start), int64(spec.End)
	if hi < lo {
		lo, hi = hi, lo
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return lo + g.rng.Int63n(hi-lo+1)
}

func (g *Generator) randomIntString(spec workload.ParameterSpec, ctx ValueSet) any {
	return strconv.FormatInt(g.randomInt(spec, ctx).(int64), 10)
}

// randomFloat returns a uniform float in [start, end).
func (g *Generator) randomFloat(spec workload.ParameterSpec, _ ValueSet) any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return spec.Start + g.rng.Float64()*(spec.End-spec.Start)
}

func (g *Generator) randomList(spec workload.ParameterSpec, _ ValueSet) any {
	if len(spec.List) == 0 {
		g.log.Warn("random_list parameter has an empty list", zap.String("parameter", spec.Name))
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return spec.List[g.rng.Intn(len(spec.List))]
}

func (g *Generator) randomBool(workload.ParameterSpec, ValueSet) any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(2) == 0
}

const shortStringCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ "

// randomString produces text of exactly the requested length. Short strings
// come from a raw character pool; longer ones from realistic words truncated
// or padded to fit.
func (g *Generator) randomString(spec workload.ParameterSpec, _ ValueSet) any {
	length := 10
	if spec.Length != nil {
		length = *spec.Length
	}
	if length <= 0 {
		return ""
	}
	if length < 5 {
		g.mu.Lock()
		buf := make([]byte, length)
		for i := range buf {
			buf[i] = shortStringCharset[g.rng.Intn(len(shortStringCharset))]
		}
		g.mu.Unlock()
		if s := strings.TrimSpace(string(buf)); s != "" {
			return string(buf)
		}
		return strings.Repeat("a", length)
	}
	g.mu.Lock()
	clean := collapseSpaces(g.faker.Sentence(length/4 + 2))
	for len(clean) < length {
		clean = collapseSpaces(clean + " " + g.faker.Sentence(length/4+2))
	}
	g.mu.Unlock()
	return clean[:length]
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (g *Generator) constantString(spec workload.ParameterSpec, _ ValueSet) any {
	return spec.Value
}

func (g *Generator) constantInt(spec workload.ParameterSpec, _ ValueSet) any {
	if v, ok := coerceInt(spec.Value); ok {
		return v
	}
	g.log.Warn("constant_int value is not numeric, returning it unchanged",
		zap.String("parameter", spec.Name), zap.Any("value", spec.Value))
	return spec.Value
}

// concat renders the configured pattern string, replacing each {@name}
// reference with the value generated for that parameter earlier in this
// repetition. Replacement is a single left-to-right scan; an unresolved
// reference substitutes as empty rather than failing.
func (g *Generator) concat(spec workload.ParameterSpec, ctx ValueSet) any {
	pattern, ok := spec.Value.(string)
	if !ok {
		g.log.Warn("concat parameter has no pattern string", zap.String("parameter", spec.Name))
		return ""
	}
	var b strings.Builder
	i := 0
	for {
		open := strings.Index(pattern[i:], "{@")
		if open < 0 {
			b.WriteString(pattern[i:])
			break
		}
		open += i
		end := strings.IndexByte(pattern[open:], '}')
		if end < 0 {
			b.WriteString(pattern[i:])
			break
		}
		end += open
		b.WriteString(pattern[i:open])
		key := pattern[open+2 : end]
		if v, found := ctx[key]; found {
			b.WriteString(g.stringify(v, spec.Format))
		} else if v, found := ctx["@"+key]; found {
			b.WriteString(g.stringify(v, spec.Format))
		} else {
			g.log.Debug("concat reference has no generated value",
				zap.String("parameter", spec.Name), zap.String("reference", key))
		}
		i = end + 1
	}
	return b.String()
}

// provider resolves a faker.<method>[.<method>...] chain against the closed
// adapter surface. A missing link stops the chain at the last successful
// result. A time-valued final result is rendered through the configured
// format.
func (g *Generator) provider(spec workload.ParameterSpec, chain []string) any {
	op, found := lookupProviderOp(chain[0])
	if !found {
		g.log.Warn("unknown provider method",
			zap.String("parameter", spec.Name), zap.String("method", chain[0]))
		return ""
	}
	// The faker is not internally synchronized; provider calls share the
	// generator mutex with the rng.
	g.mu.Lock()
	value := op(g.faker, spec.Args)
	g.mu.Unlock()
	for i, method := range chain[1:] {
		var args map[string]any
		if i == len(chain)-2 {
			args = spec.Args
		}
		next, applied := applyChainLink(value, method, args, g.timeFormat(spec))
		if !applied {
			g.log.Warn("provider chain stopped at missing method",
				zap.String("parameter", spec.Name), zap.String("method", method))
			break
		}
		value = next
	}
	if t, isTime := value.(time.Time); isTime {
		return t.Format(strftimeLayout(g.timeFormat(spec)))
	}
	return value
}
