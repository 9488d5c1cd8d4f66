package keymap

// defaultTable maps upper-case client tokens to injector key names.
var defaultTable = map[string]string{
	// Letters
	"A": "a", "B": "b", "C": "c", "D": "d", "E": "e",
	"F": "f", "G": "g", "H": "h", "I": "i", "J": "j",
	"K": "k", "L": "l", "M": "m", "N": "n", "O": "o",
	"P": "p", "Q": "q", "R": "r", "S": "s", "T": "t",
	"U": "u", "V": "v", "W": "w", "X": "x", "Y": "y", "Z": "z",

	// Digits
	"0": "0", "1": "1", "2": "2", "3": "3", "4": "4",
	"5": "5", "6": "6", "7": "7", "8": "8", "9": "9",

	// Function keys
	"F1": "f1", "F2": "f2", "F3": "f3", "F4": "f4",
	"F5": "f5", "F6": "f6", "F7": "f7", "F8": "f8",
	"F9": "f9", "F10": "f10", "F11": "f11", "F12": "f12",

	// Special keys
	"ENTER":      "enter",
	"SPACE":      "space",
	"BACKSPACE":  "backspace",
	"TAB":        "tab",
	"ESCAPE":     "esc",
	"DELETE":     "delete",
	"CAPSLOCK":   "capslock",
	"SHIFT":      "shift",
	"CTRL":       "ctrl",
	"ALT":        "alt",
	"META":       "win", // Windows key / Command key
	"INS":        "insert",
	"HOME":       "home",
	"END":        "end",
	"PAGEUP":     "pageup",
	"PAGEDOWN":   "pagedown",
	"PRINTSCRN":  "printscreen",
	"SCROLLLOCK": "scrolllock",
	"PAUSE":      "pause",

	// Arrows
	"UP":    "up",
	"DOWN":  "down",
	"LEFT":  "left",
	"RIGHT": "right",

	// Numpad
	"NUMPAD0": "num0", "NUMPAD1": "num1", "NUMPAD2": "num2",
	"NUMPAD3": "num3", "NUMPAD4": "num4", "NUMPAD5": "num5",
	"NUMPAD6": "num6", "NUMPAD7": "num7", "NUMPAD8": "num8",
	"NUMPAD9":         "num9",
	"NUMLOCK":         "numlock",
	"NUMPAD_ADD":      "add",
	"NUMPAD_SUBTRACT": "subtract",
	"NUMPAD_MULTIPLY": "multiply",
	"NUMPAD_DIVIDE":   "divide",
	"NUMPAD_DECIMAL":  "decimal",
	"NUMPAD_ENTER":    "enter",

	// Punctuation
	"TILDE":         "`",
	"MINUS":         "-",
	"EQUALS":        "=",
	"BRACKET_LEFT":  "[",
	"BRACKET_RIGHT": "]",
	"BACKSLASH":     "\\",
	"SEMICOLON":     ";",
	"QUOTE":         "'",
	"COMMA":         ",",
	"PERIOD":        ".",
	"SLASH":         "/",
}
