package openrouter

import "fmt"

// defaultInstructions is the fixed system message sent with every
// extraction request. Overridable via WithInstructions for prompt
// iteration without a rebuild.
const defaultInstructions = `You are a session archivist. You read a transcript of a working session
between a developer and an AI assistant and distill it into a handoff
record: what was worked on, what was learned, and what is still open.

Be concrete and terse. Name the actual projects, files, tools, and
decisions from the transcript. Never invent work that did not happen.
Substance rates how much real work the session contains, from 1 (idle
chatter) to 10 (major milestone).`

// defaultSchema describes the JSON object the extraction service must
// return. It is embedded in the user message on every request.
const defaultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "session_id": {"type": "string"},
    "date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "headline": {"type": "string", "maxLength": 120},
    "projects": {"type": "array", "items": {"type": "string"}},
    "keywords": {"type": "array", "items": {"type": "string"}},
    "substance": {"type": "integer", "minimum": 1, "maximum": 10},
    "duration": {"type": "string"},
    "duration_minutes": {"type": "integer", "minimum": 0},
    "model": {"type": "string"},
    "what_happened": {"type": "string"},
    "insights": {"type": "string"},
    "open_threads": {"type": "string"}
  },
  "required": ["session_id", "date", "headline", "projects", "keywords", "substance", "what_happened"],
  "additionalProperties": false
}`

// buildUserMessage embeds the schema and the rendered transcript in the
// user message for one extraction request.
func buildUserMessage(schema, transcriptMarkdown string) string {
	return fmt.Sprintf(`Return only a JSON object that strictly matches this schema.
Do not include markdown fences or any explanatory text.

JSON schema:
%s

Session transcript markdown:
%s`, schema, transcriptMarkdown)
}
