// Package codec inlines extracted assets into page markdown and protects
// inlined image payloads across translation.
//
// Inlining rewrites the self-referential asset links the OCR service emits
// (an image reference whose target is the image's own id, a table link
// whose target is the table's own id) into self-contained markdown.
// Stripping temporarily swaps the bulky data URIs for short placeholder
// tokens so they never reach the translation model, and restoring is the
// exact inverse.
package codec

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"pdf-translator/internal/document"
	"pdf-translator/internal/logger"
)

// PlaceholderPrefix starts every placeholder token minted by StripImages.
const PlaceholderPrefix = "IMG_PLACEHOLDER_"

// dataImageRef matches an inlined image reference carrying a data URI
// payload. The alt text is capture 1, the data URI capture 2.
var dataImageRef = regexp.MustCompile(`!\[([^\]]*)\]\((data:image/[^)]+)\)`)

// placeholderToken matches a placeholder minted by StripImages.
var placeholderToken = regexp.MustCompile(`IMG_PLACEHOLDER_\d+`)

// InlineImages replaces every image reference whose target equals an
// image's id with that image's data URI payload. The alt text is the id
// and stays in place, the sizing selector in rendered output depends on
// it. References to ids not present in images are left untouched, as are
// images without a payload.
func InlineImages(markdown string, images []document.Image) string {
	for _, img := range images {
		if img.Base64 == "" {
			continue
		}
		ref := "![" + img.ID + "](" + img.ID + ")"
		inlined := "![" + img.ID + "](" + img.Base64 + ")"
		markdown = strings.ReplaceAll(markdown, ref, inlined)
	}
	return markdown
}

// InlineTables replaces every table link whose target equals a table's id
// with that table's HTML content. Links to ids not present in tables are
// left untouched.
func InlineTables(markdown string, tables []document.Table) string {
	for _, tbl := range tables {
		if tbl.Content == "" {
			continue
		}
		ref := "[" + tbl.ID + "](" + tbl.ID + ")"
		markdown = strings.ReplaceAll(markdown, ref, tbl.Content)
	}
	return markdown
}

// StripImages replaces every inlined data URI with a short placeholder
// token, unique per occurrence, and returns the stripped markdown together
// with the placeholder-to-URI mapping needed to restore it. References
// that do not carry a data URI, including syntactically broken ones, pass
// through untouched.
func StripImages(markdown string) (string, map[string]string) {
	mapping := make(map[string]string)
	count := 0

	stripped := dataImageRef.ReplaceAllStringFunc(markdown, func(ref string) string {
		m := dataImageRef.FindStringSubmatch(ref)
		placeholder := fmt.Sprintf("%s%d", PlaceholderPrefix, count)
		count++
		mapping[placeholder] = m[2]
		return "![" + m[1] + "](" + placeholder + ")"
	})

	if count > 0 {
		logger.Debug("stripped inlined images",
			logger.Int("count", count),
			logger.Int("originalLength", len(markdown)),
			logger.Int("strippedLength", len(stripped)))
	}

	return stripped, mapping
}

// RestoreImages puts the original data URIs back in place of the
// placeholder tokens. A token with no mapping entry stays in the text
// verbatim; RestoreImages never fails.
func RestoreImages(markdown string, mapping map[string]string) string {
	for placeholder, uri := range mapping {
		markdown = strings.ReplaceAll(markdown, "]("+placeholder+")", "]("+uri+")")
	}
	return markdown
}

// ValidatePlaceholders reports which placeholders from the mapping no
// longer appear in the content, sorted for stable logging.
func ValidatePlaceholders(content string, mapping map[string]string) []string {
	var missing []string
	for placeholder := range mapping {
		if !strings.Contains(content, placeholder) {
			missing = append(missing, placeholder)
		}
	}
	sort.Strings(missing)
	return missing
}

// RecoverPlaceholders repairs placeholder tokens damaged in translated
// content. Translation models occasionally insert whitespace around the
// underscores or change the token's case; both damages are reversible.
// It returns the repaired content and the placeholders that remain
// missing after repair.
func RecoverPlaceholders(content string, mapping map[string]string) (string, []string) {
	missing := ValidatePlaceholders(content, mapping)
	if len(missing) == 0 {
		return content, nil
	}

	for _, placeholder := range missing {
		re, err := damagedTokenPattern(placeholder)
		if err != nil {
			continue
		}
		repaired := re.ReplaceAllString(content, placeholder)
		if repaired != content {
			logger.Debug("recovered damaged placeholder", logger.String("placeholder", placeholder))
			content = repaired
		}
	}

	stillMissing := ValidatePlaceholders(content, mapping)
	if len(stillMissing) > 0 {
		logger.Warn("placeholders lost in translation",
			logger.Int("missing", len(stillMissing)),
			logger.String("first", stillMissing[0]))
	}

	return content, stillMissing
}

// damagedTokenPattern builds a pattern matching the placeholder with
// optional whitespace around its underscores, case-insensitively.
func damagedTokenPattern(placeholder string) (*regexp.Regexp, error) {
	parts := strings.Split(placeholder, "_")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile(`(?i)` + strings.Join(parts, `\s*_\s*`))
}

// UnresolvedPlaceholders lists placeholder tokens still present in the
// content, in order of appearance. After RestoreImages these are tokens
// the mapping had no entry for.
func UnresolvedPlaceholders(content string) []string {
	return placeholderToken.FindAllString(content, -1)
}
