package ai

const replyInstruction = `Suggest 3 short, casual replies to the following message. Return ONLY a JSON array of strings with exactly 3 elements. Example: ["reply1", "reply2", "reply3"]`

// BuildReplyPrompt wraps text in the reply instruction. The text is
// embedded verbatim, quotes included.
func BuildReplyPrompt(text string) string {
	return replyInstruction + "\n\nMessage: \"" + text + "\""
}
