// Package grammar defines the KubeJS token rules shared by the web widget and
// the terminal preview.
//
// The rule tables use the Monarch vocabulary: a state holds ordered rules, a
// rule matches a regex and either emits a token, emits a token chosen by
// cases, or includes another state. Monarch() serialises them for the
// browser; Lexer() compiles the same tables into a chroma lexer.
package grammar

// LanguageID is the id the widget registers the grammar under.
const LanguageID = "kubejs"

// DefaultToken is emitted for text no rule matches.
const DefaultToken = "invalid"

// Symbols matches a run of operator characters.
const Symbols = `[=><!~?:&|+\-*\/\^%]+`

// Keywords are highlighted as keyword when a lowercase identifier matches.
var Keywords = []string{
	"break", "case", "catch", "class", "const", "continue", "debugger",
	"default", "delete", "do", "else", "export", "extends", "false",
	"finally", "for", "function", "if", "import", "in", "instanceof",
	"new", "null", "return", "super", "switch", "this", "throw",
	"true", "try", "typeof", "var", "void", "while", "with", "yield",
	"let", "static", "async", "await", "of",
}

// Operators are highlighted as operator when a symbol run matches exactly.
var Operators = []string{
	"=", ">", "<", "!", "~", "?", ":", "==", "<=", ">=", "!=",
	"&&", "||", "++", "--", "+", "-", "*", "/", "&", "|", "^", "%",
	"<<", ">>", ">>>", "+=", "-=", "*=", "/=", "&=", "|=", "^=",
	"%=", "<<=", ">>=", ">>>=",
}

// Case picks Token when the matched text is in the list named by Guard.
// The guard "@default" always matches.
type Case struct {
	Guard string
	Token string
}

// Rule is one entry of a tokenizer state.
type Rule struct {
	Regex   string
	Token   string
	Cases   []Case
	Next    string // "@state" to push, "@pop" to return
	Include string // "@state" to splice another state's rules
}

// State is a named, ordered list of rules.
type State struct {
	Name  string
	Rules []Rule
}

// Tokenizer is the ordered set of states. The first state is the root.
var Tokenizer = []State{
	{Name: "root", Rules: []Rule{
		{Regex: `[a-z_$][\w$]*`, Cases: []Case{
			{Guard: "@keywords", Token: "keyword"},
			{Guard: "@default", Token: "identifier"},
		}},
		{Regex: `[A-Z][\w$]*`, Token: "type.identifier"},
		{Include: "@whitespace"},
		{Include: "@numbers"},
		{Include: "@strings"},
		{Regex: `[{}()\[\]]`, Token: "@brackets"},
		{Regex: `[<>](?!@symbols)`, Token: "@brackets"},
		{Regex: `@[a-zA-Z_$][\w$]*`, Token: "annotation"},
		{Regex: `(@symbols)`, Cases: []Case{
			{Guard: "@operators", Token: "operator"},
			{Guard: "@default", Token: "symbol"},
		}},
	}},
	{Name: "whitespace", Rules: []Rule{
		{Regex: `[ \t\r\n]+`, Token: "white"},
		{Regex: `\/\*`, Token: "comment", Next: "@comment"},
		{Regex: `\/\/.*$`, Token: "comment"},
	}},
	{Name: "comment", Rules: []Rule{
		{Regex: `[^/*]+`, Token: "comment"},
		{Regex: `\*\/`, Token: "comment", Next: "@pop"},
		{Regex: `[/*]`, Token: "comment"},
	}},
	{Name: "numbers", Rules: []Rule{
		{Regex: `\d*\.\d+([eE][-+]?\d+)?`, Token: "number.float"},
		{Regex: `0[xX][0-9a-fA-F]+`, Token: "number.hex"},
		{Regex: `\d+`, Token: "number"},
	}},
	{Name: "strings", Rules: []Rule{
		{Regex: `'([^'\\]|\\.)*$`, Token: "string.invalid"},
		{Regex: `'`, Token: "string", Next: "@string_single"},
		{Regex: `"([^"\\]|\\.)*$`, Token: "string.invalid"},
		{Regex: `"`, Token: "string", Next: "@string_double"},
		{Regex: "`", Token: "string", Next: "@string_backtick"},
	}},
	{Name: "string_single", Rules: []Rule{
		{Regex: `[^\\']+`, Token: "string"},
		{Regex: `\\.`, Token: "string.escape"},
		{Regex: `'`, Token: "string", Next: "@pop"},
	}},
	{Name: "string_double", Rules: []Rule{
		{Regex: `[^\\"]+`, Token: "string"},
		{Regex: `\\.`, Token: "string.escape"},
		{Regex: `"`, Token: "string", Next: "@pop"},
	}},
	{Name: "string_backtick", Rules: []Rule{
		{Regex: "[^\\\\`]+", Token: "string"},
		{Regex: `\\.`, Token: "string.escape"},
		{Regex: "`", Token: "string", Next: "@pop"},
	}},
}

// lists resolves case guards to their word lists.
var lists = map[string][]string{
	"@keywords":  Keywords,
	"@operators": Operators,
}

// Pair is an open/close delimiter pair.
type Pair struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// LanguageConfiguration describes comment and bracket behaviour.
type LanguageConfiguration struct {
	Comments         Comments    `json:"comments"`
	Brackets         [][2]string `json:"brackets"`
	AutoClosingPairs []Pair      `json:"autoClosingPairs"`
	SurroundingPairs []Pair      `json:"surroundingPairs"`
}

// Comments holds the line and block comment delimiters.
type Comments struct {
	LineComment  string    `json:"lineComment"`
	BlockComment [2]string `json:"blockComment"`
}

var pairs = []Pair{
	{Open: "{", Close: "}"},
	{Open: "[", Close: "]"},
	{Open: "(", Close: ")"},
	{Open: `"`, Close: `"`},
	{Open: "'", Close: "'"},
	{Open: "`", Close: "`"},
}

// Language returns the comment and bracket configuration.
func Language() LanguageConfiguration {
	return LanguageConfiguration{
		Comments: Comments{
			LineComment:  "//",
			BlockComment: [2]string{"/*", "*/"},
		},
		Brackets: [][2]string{
			{"{", "}"},
			{"[", "]"},
			{"(", ")"},
		},
		AutoClosingPairs: append([]Pair(nil), pairs...),
		SurroundingPairs: append([]Pair(nil), pairs...),
	}
}

// Classify resolves a rule's token for matched text.
func Classify(rule Rule, text string) string {
	if len(rule.Cases) == 0 {
		return rule.Token
	}
	for _, c := range rule.Cases {
		if c.Guard == "@default" {
			return c.Token
		}
		for _, word := range lists[c.Guard] {
			if word == text {
				return c.Token
			}
		}
	}
	return DefaultToken
}
