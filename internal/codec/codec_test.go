package codec

import (
	"reflect"
	"strings"
	"testing"

	"pdf-translator/internal/document"
)

func TestInlineImages(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		images   []document.Image
		want     string
	}{
		{
			name:     "basic inline",
			markdown: "![img-0.jpeg](img-0.jpeg)",
			images: []document.Image{
				{ID: "img-0.jpeg", Base64: "data:image/jpeg;base64,AAA"},
			},
			want: "![img-0.jpeg](data:image/jpeg;base64,AAA)",
		},
		{
			name:     "reference to absent id untouched",
			markdown: "text ![img-1.png](img-1.png) text",
			images: []document.Image{
				{ID: "img-0.jpeg", Base64: "data:image/jpeg;base64,AAA"},
			},
			want: "text ![img-1.png](img-1.png) text",
		},
		{
			name:     "multiple occurrences all substituted",
			markdown: "![img-0.jpeg](img-0.jpeg) and again ![img-0.jpeg](img-0.jpeg)",
			images: []document.Image{
				{ID: "img-0.jpeg", Base64: "data:image/jpeg;base64,AAA"},
			},
			want: "![img-0.jpeg](data:image/jpeg;base64,AAA) and again ![img-0.jpeg](data:image/jpeg;base64,AAA)",
		},
		{
			name:     "id with regex metacharacters matches exactly once",
			markdown: "![img[special].png](img[special].png) ![imgXspecialY.png](imgXspecialY.png)",
			images: []document.Image{
				{ID: "img[special].png", Base64: "data:image/png;base64,BBB"},
			},
			want: "![img[special].png](data:image/png;base64,BBB) ![imgXspecialY.png](imgXspecialY.png)",
		},
		{
			name:     "image without payload skipped",
			markdown: "![img-0.jpeg](img-0.jpeg)",
			images: []document.Image{
				{ID: "img-0.jpeg", Base64: ""},
			},
			want: "![img-0.jpeg](img-0.jpeg)",
		},
		{
			name:     "no images",
			markdown: "plain text",
			images:   nil,
			want:     "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InlineImages(tt.markdown, tt.images); got != tt.want {
				t.Errorf("InlineImages() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInlineImagesIdempotent(t *testing.T) {
	markdown := "before ![img-0.jpeg](img-0.jpeg) after"
	images := []document.Image{
		{ID: "img-0.jpeg", Base64: "data:image/jpeg;base64,AAA"},
	}

	once := InlineImages(markdown, images)
	twice := InlineImages(once, images)
	if once != twice {
		t.Errorf("second InlineImages() changed output:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestInlineTables(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		tables   []document.Table
		want     string
	}{
		{
			name:     "basic inline",
			markdown: "before\n[tbl-0](tbl-0)\nafter",
			tables: []document.Table{
				{ID: "tbl-0", Content: "<table><tr><td>cell</td></tr></table>"},
			},
			want: "before\n<table><tr><td>cell</td></tr></table>\nafter",
		},
		{
			name:     "absent id untouched",
			markdown: "[tbl-9](tbl-9)",
			tables: []document.Table{
				{ID: "tbl-0", Content: "<table></table>"},
			},
			want: "[tbl-9](tbl-9)",
		},
		{
			name:     "multiple occurrences all substituted",
			markdown: "[tbl-0](tbl-0) mid [tbl-0](tbl-0)",
			tables: []document.Table{
				{ID: "tbl-0", Content: "<table/>"},
			},
			want: "<table/> mid <table/>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InlineTables(tt.markdown, tt.tables); got != tt.want {
				t.Errorf("InlineTables() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripImages(t *testing.T) {
	t.Run("single image", func(t *testing.T) {
		markdown := "![img-0.jpeg](data:image/jpeg;base64,AAA)"

		stripped, mapping := StripImages(markdown)

		want := "![img-0.jpeg](IMG_PLACEHOLDER_0)"
		if stripped != want {
			t.Errorf("StripImages() = %q, want %q", stripped, want)
		}
		if len(mapping) != 1 {
			t.Fatalf("mapping has %d entries, want 1", len(mapping))
		}
		if mapping["IMG_PLACEHOLDER_0"] != "data:image/jpeg;base64,AAA" {
			t.Errorf("mapping[IMG_PLACEHOLDER_0] = %q, want original data URI", mapping["IMG_PLACEHOLDER_0"])
		}
	})

	t.Run("each occurrence gets its own placeholder", func(t *testing.T) {
		markdown := "![a](data:image/png;base64,AAA) text ![b](data:image/jpeg;base64,BBB)"

		stripped, mapping := StripImages(markdown)

		want := "![a](IMG_PLACEHOLDER_0) text ![b](IMG_PLACEHOLDER_1)"
		if stripped != want {
			t.Errorf("StripImages() = %q, want %q", stripped, want)
		}
		if len(mapping) != 2 {
			t.Errorf("mapping has %d entries, want 2", len(mapping))
		}
	})

	t.Run("non-data references pass through", func(t *testing.T) {
		markdown := "![img-0.jpeg](img-0.jpeg) and [a link](https://example.com)"

		stripped, mapping := StripImages(markdown)

		if stripped != markdown {
			t.Errorf("StripImages() = %q, want unchanged input", stripped)
		}
		if len(mapping) != 0 {
			t.Errorf("mapping has %d entries, want 0", len(mapping))
		}
	})

	t.Run("malformed reference passes through", func(t *testing.T) {
		markdown := "broken ![alt](data:image/png;base64,AAA without closing paren"

		stripped, mapping := StripImages(markdown)

		if stripped != markdown {
			t.Errorf("StripImages() = %q, want unchanged input", stripped)
		}
		if len(mapping) != 0 {
			t.Errorf("mapping has %d entries, want 0", len(mapping))
		}
	})
}

func TestStripRestoreRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
	}{
		{
			name:     "single image",
			markdown: "![img-0.jpeg](data:image/jpeg;base64,AAA)",
		},
		{
			name: "mixed content",
			markdown: "# Heading\n\nSome prose with ![fig](data:image/png;base64,iVBORw0KGgo=) inline\n\n" +
				"<table><tr><td>kept</td></tr></table>\n\n![img-1.jpeg](data:image/jpeg;base64,BBBB)",
		},
		{
			name:     "no images at all",
			markdown: "plain paragraph with [a link](https://example.com)",
		},
		{
			name:     "empty input",
			markdown: "",
		},
		{
			name:     "same payload twice",
			markdown: "![x](data:image/gif;base64,R0lGOD) ![x](data:image/gif;base64,R0lGOD)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stripped, mapping := StripImages(tt.markdown)
			restored := RestoreImages(stripped, mapping)
			if restored != tt.markdown {
				t.Errorf("restore(strip(m)) = %q, want %q", restored, tt.markdown)
			}
		})
	}
}

func TestStripImagesRemovesAllDataURIs(t *testing.T) {
	markdown := "![a](data:image/png;base64,AAA)\n\n![b](data:image/jpeg;base64,BBB)"

	stripped, _ := StripImages(markdown)

	if strings.Contains(stripped, "data:image/") {
		t.Errorf("stripped markdown still contains a data URI: %q", stripped)
	}
}

func TestRestoreImagesMissingMapping(t *testing.T) {
	content := "![img](IMG_PLACEHOLDER_0) and ![other](IMG_PLACEHOLDER_7)"
	mapping := map[string]string{
		"IMG_PLACEHOLDER_0": "data:image/png;base64,AAA",
	}

	restored := RestoreImages(content, mapping)

	if !strings.Contains(restored, "data:image/png;base64,AAA") {
		t.Error("mapped placeholder was not restored")
	}
	if !strings.Contains(restored, "IMG_PLACEHOLDER_7") {
		t.Error("unmapped placeholder should stay in the text verbatim")
	}

	unresolved := UnresolvedPlaceholders(restored)
	if !reflect.DeepEqual(unresolved, []string{"IMG_PLACEHOLDER_7"}) {
		t.Errorf("UnresolvedPlaceholders() = %v, want [IMG_PLACEHOLDER_7]", unresolved)
	}
}

func TestValidatePlaceholders(t *testing.T) {
	mapping := map[string]string{
		"IMG_PLACEHOLDER_0": "data:image/png;base64,AAA",
		"IMG_PLACEHOLDER_1": "data:image/png;base64,BBB",
		"IMG_PLACEHOLDER_2": "data:image/png;base64,CCC",
	}

	t.Run("all present", func(t *testing.T) {
		content := "x IMG_PLACEHOLDER_0 y IMG_PLACEHOLDER_1 z IMG_PLACEHOLDER_2"
		if missing := ValidatePlaceholders(content, mapping); len(missing) != 0 {
			t.Errorf("ValidatePlaceholders() = %v, want none missing", missing)
		}
	})

	t.Run("reports exactly the missing tokens", func(t *testing.T) {
		content := "only IMG_PLACEHOLDER_1 survived"
		missing := ValidatePlaceholders(content, mapping)
		want := []string{"IMG_PLACEHOLDER_0", "IMG_PLACEHOLDER_2"}
		if !reflect.DeepEqual(missing, want) {
			t.Errorf("ValidatePlaceholders() = %v, want %v", missing, want)
		}
	})
}

func TestRecoverPlaceholders(t *testing.T) {
	mapping := map[string]string{
		"IMG_PLACEHOLDER_0": "data:image/png;base64,AAA",
	}

	tests := []struct {
		name        string
		content     string
		want        string
		wantMissing int
	}{
		{
			name:        "intact content untouched",
			content:     "![x](IMG_PLACEHOLDER_0)",
			want:        "![x](IMG_PLACEHOLDER_0)",
			wantMissing: 0,
		},
		{
			name:        "whitespace before digit",
			content:     "![x](IMG_PLACEHOLDER_ 0)",
			want:        "![x](IMG_PLACEHOLDER_0)",
			wantMissing: 0,
		},
		{
			name:        "whitespace around underscore",
			content:     "![x](IMG_PLACEHOLDER _0)",
			want:        "![x](IMG_PLACEHOLDER_0)",
			wantMissing: 0,
		},
		{
			name:        "lowercased token",
			content:     "![x](img_placeholder_0)",
			want:        "![x](IMG_PLACEHOLDER_0)",
			wantMissing: 0,
		},
		{
			name:        "token genuinely gone",
			content:     "the model dropped the image entirely",
			want:        "the model dropped the image entirely",
			wantMissing: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, missing := RecoverPlaceholders(tt.content, mapping)
			if got != tt.want {
				t.Errorf("RecoverPlaceholders() content = %q, want %q", got, tt.want)
			}
			if len(missing) != tt.wantMissing {
				t.Errorf("RecoverPlaceholders() missing = %v, want %d entries", missing, tt.wantMissing)
			}
		})
	}
}

func TestRecoverThenRestore(t *testing.T) {
	original := "intro ![fig](data:image/png;base64,iVBORw0KGgo=) outro"

	stripped, mapping := StripImages(original)

	// Simulate translation damaging the token.
	translated := strings.Replace(stripped, "IMG_PLACEHOLDER_0", "img_placeholder_ 0", 1)

	recovered, missing := RecoverPlaceholders(translated, mapping)
	if len(missing) != 0 {
		t.Fatalf("RecoverPlaceholders() missing = %v, want none", missing)
	}

	restored := RestoreImages(recovered, mapping)
	if restored != original {
		t.Errorf("restore after recovery = %q, want %q", restored, original)
	}
}
