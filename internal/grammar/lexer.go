package grammar

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/styles"
)

// chromaTypes maps widget token names to chroma token types.
var chromaTypes = map[string]chroma.TokenType{
	"keyword":         chroma.Keyword,
	"identifier":      chroma.Name,
	"type.identifier": chroma.NameClass,
	"white":           chroma.TextWhitespace,
	"comment":         chroma.Comment,
	"number.float":    chroma.LiteralNumberFloat,
	"number.hex":      chroma.LiteralNumberHex,
	"number":          chroma.LiteralNumber,
	"string":          chroma.LiteralString,
	"string.escape":   chroma.LiteralStringEscape,
	"string.invalid":  chroma.Error,
	"@brackets":       chroma.Punctuation,
	"annotation":      chroma.NameDecorator,
	"operator":        chroma.Operator,
	"symbol":          chroma.Punctuation,
	DefaultToken:      chroma.Error,
}

// ChromaType returns the chroma token type for a widget token name.
func ChromaType(token string) chroma.TokenType {
	if t, ok := chromaTypes[token]; ok {
		return t
	}
	return chroma.Error
}

var (
	lexerOnce sync.Once
	lexer     chroma.Lexer
)

// Lexer returns a chroma lexer compiled from the rule tables.
func Lexer() chroma.Lexer {
	lexerOnce.Do(func() {
		lexer = chroma.Coalesce(chroma.MustNewLexer(&chroma.Config{
			Name:      "KubeJS",
			Aliases:   []string{LanguageID},
			Filenames: []string{"*.js"},
			MimeTypes: []string{"text/javascript"},
		}, chromaRules))
	})
	return lexer
}

func chromaRules() chroma.Rules {
	rules := chroma.Rules{}
	for _, state := range Tokenizer {
		compiled := make([]chroma.Rule, 0, len(state.Rules))
		for _, rule := range state.Rules {
			compiled = append(compiled, chromaRule(rule))
		}
		rules[state.Name] = compiled
	}
	return rules
}

func chromaRule(rule Rule) chroma.Rule {
	if rule.Include != "" {
		return chroma.Include(strings.TrimPrefix(rule.Include, "@"))
	}

	out := chroma.Rule{
		Pattern: expandAttributes(rule.Regex),
	}

	if len(rule.Cases) > 0 {
		r := rule
		out.Type = chroma.EmitterFunc(func(groups []string, _ *chroma.LexerState) chroma.Iterator {
			return chroma.Literator(chroma.Token{Type: ChromaType(Classify(r, groups[0])), Value: groups[0]})
		})
	} else {
		out.Type = ChromaType(rule.Token)
	}

	switch {
	case rule.Next == "@pop":
		out.Mutator = chroma.Pop(1)
	case rule.Next != "":
		out.Mutator = chroma.Push(strings.TrimPrefix(rule.Next, "@"))
	}
	return out
}

// expandAttributes substitutes @symbols the way the widget does.
func expandAttributes(pattern string) string {
	return strings.ReplaceAll(pattern, "@symbols", Symbols)
}

// Tokens splits src into chroma tokens.
func Tokens(src string) ([]chroma.Token, error) {
	it, err := Lexer().Tokenise(nil, src)
	if err != nil {
		return nil, fmt.Errorf("tokenise: %w", err)
	}
	return it.Tokens(), nil
}

// Highlight writes src to w with terminal colour escapes. Unknown formatter
// or style names fall back to chroma's defaults.
func Highlight(w io.Writer, src, formatter, style string) error {
	it, err := Lexer().Tokenise(nil, src)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}
	return formatters.Get(formatter).Format(w, styles.Get(style), it)
}
