package geometry

import (
	"math"
	"testing"

	"pdf-translator/internal/document"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestPageSizeMM(t *testing.T) {
	tests := []struct {
		name       string
		dims       *document.Dimensions
		wantWidth  float64
		wantHeight float64
	}{
		{
			name:       "A4 scan at 200 dpi",
			dims:       &document.Dimensions{DPI: 200, Width: 1654, Height: 2339},
			wantWidth:  210.06,
			wantHeight: 297.05,
		},
		{
			name:       "US letter scan at 300 dpi",
			dims:       &document.Dimensions{DPI: 300, Width: 2550, Height: 3300},
			wantWidth:  215.9,
			wantHeight: 279.4,
		},
		{
			name:       "nil dimensions fall back to A4",
			dims:       nil,
			wantWidth:  DefaultPageWidthMM,
			wantHeight: DefaultPageHeightMM,
		},
		{
			name:       "zero dpi falls back to A4",
			dims:       &document.Dimensions{DPI: 0, Width: 1654, Height: 2339},
			wantWidth:  DefaultPageWidthMM,
			wantHeight: DefaultPageHeightMM,
		},
		{
			name:       "zero width falls back to A4",
			dims:       &document.Dimensions{DPI: 200, Width: 0, Height: 2339},
			wantWidth:  DefaultPageWidthMM,
			wantHeight: DefaultPageHeightMM,
		},
		{
			name:       "negative height falls back to A4",
			dims:       &document.Dimensions{DPI: 200, Width: 1654, Height: -5},
			wantWidth:  DefaultPageWidthMM,
			wantHeight: DefaultPageHeightMM,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotWidth, gotHeight := PageSizeMM(tt.dims)
			if !almostEqual(gotWidth, tt.wantWidth) || !almostEqual(gotHeight, tt.wantHeight) {
				t.Errorf("PageSizeMM() = (%.2f, %.2f), want (%.2f, %.2f)",
					gotWidth, gotHeight, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestImageWidthPercent(t *testing.T) {
	tests := []struct {
		name        string
		box         *document.BoundingBox
		pageWidthPx int
		wantPercent float64
		wantOK      bool
	}{
		{
			name:        "figure spanning half the page",
			box:         &document.BoundingBox{TopLeftX: 152, BottomRightX: 1058},
			pageWidthPx: 1654,
			wantPercent: 54.78,
			wantOK:      true,
		},
		{
			name:        "small inline figure",
			box:         &document.BoundingBox{TopLeftX: 0, BottomRightX: 124},
			pageWidthPx: 1654,
			wantPercent: 7.50,
			wantOK:      true,
		},
		{
			name:        "full width figure",
			box:         &document.BoundingBox{TopLeftX: 0, BottomRightX: 1654},
			pageWidthPx: 1654,
			wantPercent: 100,
			wantOK:      true,
		},
		{
			name:        "box wider than the page is capped",
			box:         &document.BoundingBox{TopLeftX: 0, BottomRightX: 2000},
			pageWidthPx: 1654,
			wantPercent: 100,
			wantOK:      true,
		},
		{
			name:        "nil box",
			box:         nil,
			pageWidthPx: 1654,
			wantOK:      false,
		},
		{
			name:        "zero width box",
			box:         &document.BoundingBox{TopLeftX: 500, BottomRightX: 500},
			pageWidthPx: 1654,
			wantOK:      false,
		},
		{
			name:        "inverted box",
			box:         &document.BoundingBox{TopLeftX: 1058, BottomRightX: 152},
			pageWidthPx: 1654,
			wantOK:      false,
		},
		{
			name:        "zero page width",
			box:         &document.BoundingBox{TopLeftX: 152, BottomRightX: 1058},
			pageWidthPx: 0,
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPercent, gotOK := ImageWidthPercent(tt.box, tt.pageWidthPx)
			if gotOK != tt.wantOK {
				t.Fatalf("ImageWidthPercent() ok = %v, want %v", gotOK, tt.wantOK)
			}
			if tt.wantOK && !almostEqual(gotPercent, tt.wantPercent) {
				t.Errorf("ImageWidthPercent() = %.2f, want %.2f", gotPercent, tt.wantPercent)
			}
		})
	}
}

func TestImageWidthPercentBounds(t *testing.T) {
	// Any usable box must produce a percentage in (0, 100].
	boxes := []*document.BoundingBox{
		{TopLeftX: 0, BottomRightX: 1},
		{TopLeftX: 100, BottomRightX: 900},
		{TopLeftX: 0, BottomRightX: 1654},
		{TopLeftX: 0, BottomRightX: 5000},
	}

	for _, box := range boxes {
		percent, ok := ImageWidthPercent(box, 1654)
		if !ok {
			t.Fatalf("ImageWidthPercent(%+v) unexpectedly not ok", box)
		}
		if percent <= 0 || percent > 100 {
			t.Errorf("ImageWidthPercent(%+v) = %.4f, want in (0, 100]", box, percent)
		}
	}
}

func TestImageWidthPercentDPIInvariance(t *testing.T) {
	// The same physical layout scanned at different resolutions scales all
	// pixel measurements together, so the percentage must not change.
	lowBox := &document.BoundingBox{TopLeftX: 76, BottomRightX: 529}
	highBox := &document.BoundingBox{TopLeftX: 228, BottomRightX: 1587}

	lowPercent, okLow := ImageWidthPercent(lowBox, 827)
	highPercent, okHigh := ImageWidthPercent(highBox, 2481)
	if !okLow || !okHigh {
		t.Fatal("expected both resolutions to produce a percentage")
	}
	if !almostEqual(lowPercent, highPercent) {
		t.Errorf("percentage differs across DPI: %.4f vs %.4f", lowPercent, highPercent)
	}
}
