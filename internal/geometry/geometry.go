// Package geometry converts pixel measurements from OCR output into
// physical page sizes and page-relative image widths.
package geometry

import "pdf-translator/internal/document"

const mmPerInch = 25.4

// Default page size in millimeters (A4), used when a document reports no
// usable dimensions.
const (
	DefaultPageWidthMM  = 210.0
	DefaultPageHeightMM = 297.0
)

// PageSizeMM converts page pixel dimensions to millimeters using the scan
// DPI. Nil or unusable dimensions fall back to A4.
func PageSizeMM(dims *document.Dimensions) (widthMM, heightMM float64) {
	if !UsableDimensions(dims) {
		return DefaultPageWidthMM, DefaultPageHeightMM
	}
	widthMM = float64(dims.Width) / float64(dims.DPI) * mmPerInch
	heightMM = float64(dims.Height) / float64(dims.DPI) * mmPerInch
	return widthMM, heightMM
}

// UsableDimensions reports whether dims can produce a physical page size.
func UsableDimensions(dims *document.Dimensions) bool {
	return dims != nil && dims.DPI > 0 && dims.Width > 0 && dims.Height > 0
}

// ImageWidthPercent returns the image width as a percentage of the page
// width. Both measurements are in pixels of the same scan, so the result
// does not depend on DPI. The percentage is capped at 100. ok is false
// when the box is nil, the box width is not positive, or the page width
// is not positive; such images get no sizing rule.
func ImageWidthPercent(box *document.BoundingBox, pageWidthPx int) (percent float64, ok bool) {
	if box == nil || pageWidthPx <= 0 {
		return 0, false
	}
	w := box.Width()
	if w <= 0 {
		return 0, false
	}
	percent = float64(w) / float64(pageWidthPx) * 100
	if percent > 100 {
		percent = 100
	}
	return percent, true
}
