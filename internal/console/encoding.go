package console

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// charsets maps --encoding names to single-byte code pages.  "utf-8"
// is handled separately.
var charsets = map[string]encoding.Encoding{
	"latin1": charmap.ISO8859_1,
	"latin9": charmap.ISO8859_15,
	"cp1252": charmap.Windows1252,
	"cp437":  charmap.CodePage437,
	"koi8-r": charmap.KOI8R,
}

// NewDecoder returns a function that turns inbound text into printable
// UTF-8: it decodes with the named charset and strips mIRC formatting
// codes.  Invalid UTF-8 under "utf-8" is replaced with U+FFFD.
func NewDecoder(name string) (func(string) string, error) {
	name = strings.ToLower(name)
	if name == "" || name == "utf-8" || name == "utf8" {
		return func(s string) string {
			return StripFormatting(strings.ToValidUTF8(s, "�"))
		}, nil
	}

	enc, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return func(s string) string {
		out, err := enc.NewDecoder().String(s)
		if err != nil {
			out = strings.ToValidUTF8(s, "�")
		}
		return StripFormatting(out)
	}, nil
}

// Formatting control codes.
const (
	ctrlBold      = '\x02'
	ctrlColor     = '\x03'
	ctrlHexColor  = '\x04'
	ctrlReset     = '\x0f'
	ctrlMonospace = '\x11'
	ctrlReverse   = '\x16'
	ctrlItalic    = '\x1d'
	ctrlStrike    = '\x1e'
	ctrlUnderline = '\x1f'
)

// StripFormatting removes bold, colour and similar control codes.
// Colour codes carry up to two digits of foreground and, after a comma,
// up to two of background.
func StripFormatting(s string) string {
	if !strings.ContainsAny(s, "\x02\x03\x04\x0f\x11\x16\x1d\x1e\x1f") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ctrlBold, ctrlReset, ctrlMonospace, ctrlReverse, ctrlItalic, ctrlStrike, ctrlUnderline:
		case ctrlColor:
			i = skipColor(s, i+1, 2, isDigit) - 1
		case ctrlHexColor:
			i = skipColor(s, i+1, 6, isHex) - 1
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// skipColor returns the index just past a "fg[,bg]" colour argument
// starting at i, where each part is up to width characters matching ok.
func skipColor(s string, i, width int, ok func(byte) bool) int {
	j := skipN(s, i, width, ok)
	if j > i && j+1 < len(s) && s[j] == ',' && ok(s[j+1]) {
		j = skipN(s, j+1, width, ok)
	}
	return j
}

func skipN(s string, i, n int, ok func(byte) bool) int {
	for n > 0 && i < len(s) && ok(s[i]) {
		i++
		n--
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
