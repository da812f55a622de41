// Package directive derives renderer sizing instructions from the
// structured document model. The directives are renderer-agnostic values,
// the render stage turns them into its native styling.
package directive

import (
	"pdf-translator/internal/document"
	"pdf-translator/internal/geometry"
	"pdf-translator/internal/logger"
)

// PageSize is the physical page size directive for a document.
type PageSize struct {
	WidthMM  float64
	HeightMM float64
}

// ImageWidth sizes one image relative to the page width. SelectorKey is
// the image id, which rendered output exposes as the image's alt text.
type ImageWidth struct {
	SelectorKey string
	Percent     float64
}

// Set is the complete sizing ruleset for one document: a single page size
// and one width rule per sizable image.
type Set struct {
	Page   PageSize
	Images []ImageWidth
}

// Generate derives the directive set for a document. The same document
// always yields the same set.
//
// The page size comes from the first page reporting usable dimensions;
// documents are assumed to have a uniform page size. When no page reports
// dimensions the size falls back to A4. Images without usable geometry,
// and all images on pages without dimensions, are skipped rather than
// given an invalid rule.
func Generate(doc *document.Document) Set {
	set := Set{
		Page: PageSize{
			WidthMM:  geometry.DefaultPageWidthMM,
			HeightMM: geometry.DefaultPageHeightMM,
		},
	}
	if doc == nil {
		return set
	}

	sized := false
	skipped := 0
	for _, page := range doc.Pages {
		if !sized && geometry.UsableDimensions(page.Size) {
			set.Page.WidthMM, set.Page.HeightMM = geometry.PageSizeMM(page.Size)
			sized = true
		}

		pageWidthPx := 0
		if page.Size != nil {
			pageWidthPx = page.Size.Width
		}

		for _, img := range page.Images {
			percent, ok := geometry.ImageWidthPercent(img.Box, pageWidthPx)
			if !ok {
				skipped++
				logger.Warn("skipping image without usable geometry",
					logger.Int("page", page.Index),
					logger.String("image", img.ID))
				continue
			}
			set.Images = append(set.Images, ImageWidth{
				SelectorKey: img.ID,
				Percent:     percent,
			})
		}
	}

	logger.Debug("generated render directives",
		logger.Int("pages", len(doc.Pages)),
		logger.Int("imageRules", len(set.Images)),
		logger.Int("skippedImages", skipped),
		logger.Bool("pageSizeFromDocument", sized))

	return set
}
