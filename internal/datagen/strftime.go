package datagen

import "strings"

// DefaultTimeFormat is the pattern applied to date/time values when a
// parameter does not declare its own.
const DefaultTimeFormat = "%Y-%m-%dT%H:%M:%S.%fZ"

// strftime directives mapped onto Go reference-time layout elements. %f is
// the Python microsecond extension; it renders as a zero-padded fraction and
// is only meaningful directly after a '.' in the pattern, which is also the
// only position workload files use it in.
var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'f': "000000",
	'j': "002",
	'a': "Mon",
	'A': "Monday",
	'b': "Jan",
	'B': "January",
	'p': "PM",
	'z': "-0700",
	'Z': "MST",
	'%': "%",
}

// strftimeLayout translates a strftime-style pattern into a Go time layout.
// Unknown directives pass through literally.
func strftimeLayout(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 8)
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' || i+1 >= len(pattern) {
			b.WriteByte(c)
			continue
		}
		i++
		if layout, ok := strftimeDirectives[pattern[i]]; ok {
			b.WriteString(layout)
		} else {
			b.WriteByte('%')
			b.WriteByte(pattern[i])
		}
	}
	return b.String()
}
