package extraction_engine

import "strings"

const promptPreamble = "Extract the following fields from this document's OCR text. " +
	"Reply in JSON format with the fields as keys. "

// BuildPrompt assembles the extraction instruction, the caller's field
// specification and the document text.
func BuildPrompt(documentText, fieldSpec string) string {
	var sb strings.Builder
	sb.Grow(len(promptPreamble) + len(fieldSpec) + len(documentText) + 32)
	sb.WriteString(promptPreamble)
	sb.WriteString("Fields: ")
	sb.WriteString(fieldSpec)
	sb.WriteString("\n---\nOCR Text:\n")
	sb.WriteString(documentText)
	return sb.String()
}
