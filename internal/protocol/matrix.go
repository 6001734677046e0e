package protocol

import "strings"

// MatrixSize is the canonical layout size; KeyCount is the number of
// physically active positions. Indices in [KeyCount, MatrixSize) and any
// index whose name is "?" are unused matrix slots: editors should skip
// them, and KeyName degrades to "?" for them, same as for named-but-unused
// positions within the active range.
const (
	MatrixSize = 126
	KeyCount   = 98
)

// keyNames mirrors the vendor's physical key-matrix layout, column-major,
// 6 rows per column. The first 90 entries are the named positions the
// firmware documents; positions 90..126 are additional matrix slots this
// keyboard family's larger layouts populate but that carry no fixed name
// here, and decode to "?" per the matrix-indices-outside-the-named-set
// rule.
var keyNames = buildKeyNames()

func buildKeyNames() []string {
	named := []string{
		// Col 0 (0-5)
		"Esc", "`", "Tab", "Caps", "LShf", "LCtl",
		// Col 1 (6-11)
		"F1", "1", "Q", "A", "IntlBs", "Win",
		// Col 2 (12-17)
		"F2", "2", "W", "S", "Z", "LAlt",
		// Col 3 (18-23)
		"F3", "3", "E", "D", "X", "?",
		// Col 4 (24-29)
		"F4", "4", "R", "F", "C", "?",
		// Col 5 (30-35)
		"F5", "5", "T", "G", "V", "?",
		// Col 6 (36-41)
		"F6", "6", "Y", "H", "B", "Spc",
		// Col 7 (42-47)
		"F7", "7", "U", "J", "N", "?",
		// Col 8 (48-53)
		"F8", "8", "I", "K", "M", "?",
		// Col 9 (54-59)
		"F9", "9", "O", "L", ",", "RAlt",
		// Col 10 (60-65)
		"F10", "0", "P", ";", ".", "Fn",
		// Col 11 (66-71)
		"F11", "-", "[", "'", "/", "RCtl",
		// Col 12 (72-77)
		"F12", "=", "]", "IntlRo", "RShf", "Left",
		// Col 13 (78-83)
		"Del", "Bksp", "\\", "Ent", "Up", "Down",
		// Col 14 (84-89)
		"?", "Home", "PgUp", "PgDn", "End", "Right",
	}
	all := make([]string, MatrixSize)
	copy(all, named)
	for i := len(named); i < MatrixSize; i++ {
		all[i] = "?"
	}
	return all
}

// keyAliases maps alternate spellings onto the canonical name used in
// keyNames, checked before falling back to a direct case-insensitive match.
var keyAliases = map[string]string{
	"escape":    "Esc",
	"capslock":  "Caps",
	"lshift":    "LShf",
	"lctrl":     "LCtl",
	"lcontrol":  "LCtl",
	"lalt":      "LAlt",
	"rshift":    "RShf",
	"rctrl":     "RCtl",
	"rcontrol":  "RCtl",
	"ralt":      "RAlt",
	"space":     "Spc",
	"spacebar":  "Spc",
	"backspace": "Bksp",
	"delete":    "Del",
	"enter":     "Ent",
	"return":    "Ent",
	"pageup":    "PgUp",
	"pagedown":  "PgDn",
	"windows":   "Win",
	"super":     "Win",
	"meta":      "Win",
}

// KeyName returns the matrix label for index, or "?" for indices outside
// the named set.
func KeyName(index byte) string {
	if int(index) >= len(keyNames) {
		return "?"
	}
	return keyNames[index]
}

// KeyCodeFromName looks up a matrix index by case-insensitive name,
// accepting both canonical names and common aliases. Returns false if name
// does not resolve (including "?", which is never a valid lookup target).
func KeyCodeFromName(name string) (byte, bool) {
	lower := strings.ToLower(name)
	if canonical, ok := keyAliases[lower]; ok {
		lower = strings.ToLower(canonical)
	}
	for i, n := range keyNames {
		if n == "?" {
			continue
		}
		if strings.ToLower(n) == lower {
			return byte(i), true
		}
	}
	return 0, false
}
