package normalize

import (
	"regexp"
	"strings"
)

var (
	engineStrip   = regexp.MustCompile(`[^0-9.l]`)
	engineDecimal = regexp.MustCompile(`^(\d)\.(\d)l?$`)
	engineTwo     = regexp.MustCompile(`^(\d)(\d)l?$`)
)

// EngineSize returns the displacement as "<d.d>L". ok is false when raw does
// not look like a displacement and the caller should ask again. A lone digit
// ("V6") is a cylinder count and is rejected.
func EngineSize(raw string) (string, bool) {
	s := engineStrip.ReplaceAllString(strings.ToLower(raw), "")

	if m := engineDecimal.FindStringSubmatch(s); m != nil {
		return m[1] + "." + m[2] + "L", true
	}
	// "16" is read as 1.6
	if m := engineTwo.FindStringSubmatch(s); m != nil {
		return m[1] + "." + m[2] + "L", true
	}
	return "", false
}
