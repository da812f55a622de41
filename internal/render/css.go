package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"pdf-translator/internal/directive"
)

// BaseCSS is the document-wide style: the Atkinson Hyperlegible family
// with a sans-serif fallback, tight line height, and bordered tables.
const BaseCSS = `body {
    font-family: "Atkinson Hyperlegible", sans-serif;
    color: #222;
    line-height: 1.1;
    margin: 0;
    padding: 0;
}

table {
    border-collapse: collapse;
}

th, td {
    border: 1px solid #333;
    padding: 4px;
}`

// PageCSS emits the @page rule sizing the printed page in millimeters.
// Millimeters are physical units: the browser's pixel-per-point print
// scaling never touches them, so the directives need no correction.
func PageCSS(size directive.PageSize) string {
	return fmt.Sprintf("@page { size: %.1fmm %.1fmm; margin: 10mm; }", size.WidthMM, size.HeightMM)
}

// ImageCSS emits one width rule per image, keyed by alt text. Alt text is
// the extraction asset id, carried through translation unchanged, so an
// attribute selector reaches exactly the right <img>.
func ImageCSS(images []directive.ImageWidth) string {
	if len(images) == 0 {
		return ""
	}

	rules := make([]string, 0, len(images))
	for _, img := range images {
		safeID := strings.ReplaceAll(img.SelectorKey, `"`, `\"`)
		rules = append(rules, fmt.Sprintf(`img[alt="%s"] { width: %.1f%%; height: auto; }`, safeID, img.Percent))
	}

	return strings.Join(rules, "\n")
}

// FontFaceCSS emits a @font-face rule loading a font file from disk, for
// a bundled font. Empty fontPath yields no rule and the sans-serif
// fallback applies.
func FontFaceCSS(fontPath string) string {
	if fontPath == "" {
		return ""
	}

	return fmt.Sprintf(`@font-face {
    font-family: "Atkinson Hyperlegible";
    src: url("%s") format("truetype");
    font-weight: 100 900;
    font-style: normal;
}`, fileURI(fontPath))
}

// StyleSheet assembles the full document CSS from the render directives.
func StyleSheet(set directive.Set, fontPath string) string {
	parts := []string{}
	if fontFace := FontFaceCSS(fontPath); fontFace != "" {
		parts = append(parts, fontFace)
	}
	parts = append(parts, BaseCSS, PageCSS(set.Page))
	if imageCSS := ImageCSS(set.Images); imageCSS != "" {
		parts = append(parts, imageCSS)
	}
	return strings.Join(parts, "\n")
}

// WrapWithStyles wraps an HTML body fragment into a complete document
// with the assembled stylesheet.
func WrapWithStyles(htmlBody string, set directive.Set, fontPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Translated Document</title>
    <style>
%s
    </style>
</head>
<body>
%s
</body>
</html>
`, StyleSheet(set, fontPath), htmlBody)
}

// fileURI converts a filesystem path to a file:// URL.
func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return "file://" + slashed
}
