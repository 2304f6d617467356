package grammar

import (
	"bytes"
	"encoding/json"
)

// Monarch renders the rule tables as a Monaco Monarch language definition.
// Key order matters to the widget (cases are tried in order, the first state
// is the start state), so the document is written by hand.
func Monarch() json.RawMessage {
	var buf bytes.Buffer
	buf.WriteString(`{"defaultToken":`)
	writeJSON(&buf, DefaultToken)
	buf.WriteString(`,"keywords":`)
	writeJSON(&buf, Keywords)
	buf.WriteString(`,"operators":`)
	writeJSON(&buf, Operators)
	buf.WriteString(`,"symbols":`)
	writeJSON(&buf, Symbols)
	buf.WriteString(`,"tokenizer":{`)
	for i, state := range Tokenizer {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSON(&buf, state.Name)
		buf.WriteString(`:[`)
		for j, rule := range state.Rules {
			if j > 0 {
				buf.WriteByte(',')
			}
			writeRule(&buf, rule)
		}
		buf.WriteByte(']')
	}
	buf.WriteString(`}}`)
	return json.RawMessage(buf.Bytes())
}

func writeRule(buf *bytes.Buffer, rule Rule) {
	if rule.Include != "" {
		buf.WriteString(`{"include":`)
		writeJSON(buf, rule.Include)
		buf.WriteByte('}')
		return
	}

	buf.WriteByte('[')
	writeJSON(buf, rule.Regex)
	buf.WriteByte(',')
	if len(rule.Cases) > 0 {
		buf.WriteString(`{"cases":{`)
		for i, c := range rule.Cases {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSON(buf, c.Guard)
			buf.WriteByte(':')
			writeJSON(buf, c.Token)
		}
		buf.WriteString(`}}`)
	} else {
		writeJSON(buf, rule.Token)
	}
	if rule.Next != "" {
		buf.WriteByte(',')
		writeJSON(buf, rule.Next)
	}
	buf.WriteByte(']')
}

func writeJSON(buf *bytes.Buffer, v interface{}) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
	// Encode appends a newline
	buf.Truncate(buf.Len() - 1)
}
