package translate

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// languageName canonicalizes a language identifier for the prompts. BCP 47
// tags like "fr" become their English display name; anything that does not
// parse as a tag is passed through unchanged.
func languageName(lang string) string {
	trimmed := strings.TrimSpace(lang)
	if trimmed == "" {
		return trimmed
	}

	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return trimmed
}

// buildSystemPrompt creates the system prompt for the translation task.
// The extracted markdown mixes markdown with raw HTML tables and image
// references, all of which must survive the round trip untouched.
func buildSystemPrompt(sourceLanguage, targetLanguage string) string {
	return fmt.Sprintf(`You are a professional document translator. You translate documents from %s to %s.

CRITICAL RULES:
1. PRESERVE ALL HTML tags and attributes exactly as they are (such as <table>, <tr>, <td>, <th>, <br>). Translate only the text between the tags.
2. PRESERVE ALL Markdown formatting: headings, lists, emphasis, links, tables, and blank lines.
3. PRESERVE ALL image references exactly as they are, including IMG_PLACEHOLDER_N tokens and data URIs. Copy each one character by character. NEVER modify, translate, or drop them.
4. Translate ONLY the natural language text content.
5. Maintain the document structure: the same headings, the same paragraphs, the same order.

Return ONLY the translated document, with no explanations, notes, or code fences.`, sourceLanguage, targetLanguage)
}

// buildUserPrompt creates the user prompt with the content to translate.
func buildUserPrompt(content string, placeholderCount int) string {
	if placeholderCount == 0 {
		return fmt.Sprintf(`Translate the following document. Keep all formatting intact.

%s`, content)
	}

	return fmt.Sprintf(`Translate the following document. It contains %d image placeholders (IMG_PLACEHOLDER_N format).

CRITICAL: Copy every placeholder EXACTLY as written, in place. Do not modify any placeholder.

%s`, placeholderCount, content)
}
