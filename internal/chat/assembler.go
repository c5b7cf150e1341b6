package chat

import "strings"

// contextPreamble introduces retrieved document context to the model.
// The wording matches what the chat flow was tuned against; change with
// care.
const contextPreamble = "You are an assistant with access to the following context extracted " +
	"from the user's documents. Use it to answer the user.\n\n"

// BuildContext formats retrieved chunk texts into a system-prompt segment:
// the fixed instructional preamble followed by the chunks, newline-joined,
// in ranked order. Pure string formatting, no I/O.
//
// Returns an empty string when there are no chunks, so callers can skip
// the system message entirely.
func BuildContext(chunks []string) string {
	if len(chunks) == 0 {
		return ""
	}
	return contextPreamble + strings.Join(chunks, "\n")
}
