package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxFileNameBytes keeps generated names well under common filesystem limits
// once an extension and a " (N)" suffix are added.
const maxFileNameBytes = 120

// Characters that are unsafe on at least one of the filesystems samples live on.
var fileNameReplacer = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-",
	"?", "", "\"", "", "<", "", ">", "", "|", "",
)

// SanitizeFileName makes a session name usable as a file name. Path
// separators, colons and asterisks become dashes, other unsafe characters and
// control characters are dropped, and the result is trimmed and capped at a
// rune boundary.
func SanitizeFileName(name string) string {
	name = fileNameReplacer.Replace(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if len(name) <= maxFileNameBytes {
		return name
	}
	cut := maxFileNameBytes
	for cut > 0 && !utf8RuneStart(name[cut]) {
		cut--
	}
	return strings.TrimSpace(name[:cut])
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeToken folds value to a lowercase ASCII token for identifiers such as
// default session names. Accents are stripped ("Café" becomes "cafe"), digits,
// hyphens and underscores are kept, and runs of anything else collapse to one
// underscore. Empty results become "unknown".
func SanitizeToken(value string) string {
	folded, _, err := transform.String(stripMarks, strings.TrimSpace(value))
	if err != nil {
		folded = value
	}
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-'):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
