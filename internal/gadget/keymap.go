package gadget

// Keyboard page usages (USB HID Usage Tables, page 0x07), US layout.
const (
	usageA         = 0x04
	usage1         = 0x1E
	usageEnter     = 0x28
	usageBackspace = 0x2A
	usageTab       = 0x2B
	usageSpace     = 0x2C

	modLeftShift = 0x02
)

// keystroke is one keyboard report's worth of input.
type keystroke struct {
	usage     uint8
	modifiers uint8
}

// punctuation maps ASCII punctuation to (usage, shifted).
var punctuation = map[rune]struct {
	usage   uint8
	shifted bool
}{
	'-':  {0x2D, false},
	'_':  {0x2D, true},
	'=':  {0x2E, false},
	'+':  {0x2E, true},
	'[':  {0x2F, false},
	'{':  {0x2F, true},
	']':  {0x30, false},
	'}':  {0x30, true},
	'\\': {0x31, false},
	'|':  {0x31, true},
	';':  {0x33, false},
	':':  {0x33, true},
	'\'': {0x34, false},
	'"':  {0x34, true},
	'`':  {0x35, false},
	'~':  {0x35, true},
	',':  {0x36, false},
	'<':  {0x36, true},
	'.':  {0x37, false},
	'>':  {0x37, true},
	'/':  {0x38, false},
	'?':  {0x38, true},
}

// shiftedDigits maps the shifted number row. ')' is on '0', which sits
// after '1'..'9' in the usage table.
var shiftedDigits = map[rune]uint8{
	'!': usage1, '@': usage1 + 1, '#': usage1 + 2, '$': usage1 + 3,
	'%': usage1 + 4, '^': usage1 + 5, '&': usage1 + 6, '*': usage1 + 7,
	'(': usage1 + 8, ')': usage1 + 9,
}

// lookupKey maps a rune to its US-layout keystroke. Returns false for
// runes the boot keyboard cannot type.
func lookupKey(r rune) (keystroke, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return keystroke{usage: usageA + uint8(r-'a')}, true
	case r >= 'A' && r <= 'Z':
		return keystroke{usage: usageA + uint8(r-'A'), modifiers: modLeftShift}, true
	case r >= '1' && r <= '9':
		return keystroke{usage: usage1 + uint8(r-'1')}, true
	case r == '0':
		return keystroke{usage: usage1 + 9}, true
	case r == ' ':
		return keystroke{usage: usageSpace}, true
	case r == '\t':
		return keystroke{usage: usageTab}, true
	}
	if u, ok := shiftedDigits[r]; ok {
		return keystroke{usage: u, modifiers: modLeftShift}, true
	}
	if p, ok := punctuation[r]; ok {
		k := keystroke{usage: p.usage}
		if p.shifted {
			k.modifiers = modLeftShift
		}
		return k, true
	}
	return keystroke{}, false
}
