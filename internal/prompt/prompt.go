// Package prompt renders translation requests into the TranslateGemma turn format.
package prompt

import "strings"

// Gemma turn delimiters. GenerationStart is what the model expects right
// before it starts writing its answer.
const (
	TurnStart       = "<start_of_turn>"
	TurnEnd         = "<end_of_turn>"
	EndOfSequence   = "<eos>"
	UserRole        = "user"
	ModelRole       = "model"
	GenerationStart = TurnStart + ModelRole + "\n"
)

// DefaultStopMarkers returns the markers that end a model turn. A new slice is
// returned on every call.
func DefaultStopMarkers() []string {
	return []string{TurnEnd, EndOfSequence}
}

// Build renders text into a single user turn followed by the model turn
// opener:
//
//	<start_of_turn>user
//	[src->tgt] text<end_of_turn>
//	<start_of_turn>model
//
// Language codes and text are embedded verbatim. Nothing is escaped, so text
// that itself contains turn delimiters produces an ambiguous prompt.
func Build(text, sourceLang, targetLang string) string {
	var b strings.Builder
	b.Grow(len(text) + len(sourceLang) + len(targetLang) + 64)
	b.WriteString(TurnStart)
	b.WriteString(UserRole)
	b.WriteString("\n[")
	b.WriteString(sourceLang)
	b.WriteString("->")
	b.WriteString(targetLang)
	b.WriteString("] ")
	b.WriteString(text)
	b.WriteString(TurnEnd)
	b.WriteString("\n")
	b.WriteString(GenerationStart)
	return b.String()
}
