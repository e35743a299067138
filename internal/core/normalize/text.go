package normalize

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// formatDouble renders a float64 the way Dhall's Double/show requires:
// NaN and the infinities get their literal spellings, everything else
// gets the shortest decimal that round-trips back to the same bits, with
// a mandatory decimal point (Dhall has no separate integer-literal Double
// syntax), always in plain positional notation: Text('f') never switches
// to an exponent form, whatever the magnitude.
// apd.Decimal's SetFloat64 already produces the shortest round-tripping
// form (strconv.FormatFloat with 'g' and precision -1 gives the same
// shortest-form guarantee); this function is the module's only use of
// apd.
func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	d := new(apd.Decimal)
	if _, err := d.SetFloat64(f); err != nil {
		// Unreachable for any finite float64; SetFloat64 only errors on
		// NaN/Inf, already handled above.
		panic(fmt.Sprintf("normalize: apd.SetFloat64(%v): %v", f, err))
	}
	s := d.Text('f')
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	if f == 0 && math.Signbit(f) && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s
}

// escapeDhallText renders raw as a double-quoted Dhall text literal,
// escaping exactly the characters the grammar requires: backslash,
// double quote, the interpolation opener `${`, and the control
// characters that aren't otherwise representable literally.
func escapeDhallText(raw string) string {
	var b strings.Builder
	b.WriteByte('"')
	runes := []rune(raw)
	for i, r := range runes {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '$':
			if i+1 < len(runes) && runes[i+1] == '{' {
				b.WriteString(`\$`)
			} else {
				b.WriteRune(r)
			}
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
