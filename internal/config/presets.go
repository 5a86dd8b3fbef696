package config

type preset struct {
	keywords    []string
	identifiers []string
}

var presets = map[string]preset{
	"cpp": {
		keywords: []string{
			"auto", "break", "case", "catch", "class", "const", "constexpr",
			"continue", "default", "delete", "do", "else", "enum", "explicit",
			"extern", "for", "friend", "goto", "if", "inline", "namespace", "new",
			"noexcept", "operator", "private", "protected", "public", "return",
			"sizeof", "static", "struct", "switch", "template", "this", "throw",
			"try", "typedef", "typename", "union", "using", "virtual", "volatile",
			"while", "#include", "#define", "#ifdef", "#ifndef", "#endif",
		},
		identifiers: []string{
			"bool", "char", "double", "float", "int", "long", "short", "signed",
			"unsigned", "void", "size_t", "nullptr", "true", "false", "std",
			"string", "vector", "map",
		},
	},
	"go": {
		keywords: []string{
			"break", "case", "chan", "const", "continue", "default", "defer",
			"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
			"interface", "map", "package", "range", "return", "select", "struct",
			"switch", "type", "var",
		},
		identifiers: []string{
			"any", "bool", "byte", "comparable", "error", "float32", "float64",
			"int", "int8", "int16", "int32", "int64", "rune", "string", "uint",
			"uint8", "uint16", "uint32", "uint64", "uintptr", "true", "false",
			"nil", "iota", "append", "cap", "clear", "close", "copy", "delete",
			"len", "make", "max", "min", "new", "panic", "print", "println",
			"recover",
		},
	},
	"lua": {
		keywords: []string{
			"and", "break", "do", "else", "elseif", "end", "for", "function",
			"goto", "if", "in", "local", "not", "or", "repeat", "return", "then",
			"until", "while",
		},
		identifiers: []string{
			"nil", "true", "false", "self", "print", "pairs", "ipairs", "require",
			"string", "table", "math", "tostring", "tonumber", "type", "error",
			"pcall", "setmetatable", "getmetatable",
		},
	},
}
