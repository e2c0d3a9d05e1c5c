package assistant

import (
	"strings"
	"testing"

	"shopassist/internal/catalog"
	"shopassist/internal/session"
)

func TestFormatHistory_Empty(t *testing.T) {
	if got := FormatHistory(nil); got != firstTurnSentence {
		t.Fatalf("expected the first-turn sentence, got: %q", got)
	}
}

func TestFormatHistory_LabelsAndOrder(t *testing.T) {
	turns := []session.Turn{
		{Role: session.RoleUser, Content: "có áo khoác không?"},
		{Role: session.RoleAssistant, Content: "dạ có ạ"},
	}

	got := FormatHistory(turns)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got: %d (%q)", len(lines), got)
	}
	if lines[0] != "Khách hàng: có áo khoác không?" {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if lines[1] != "Trợ lý: dạ có ạ" {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestFormatHistory_WindowKeepsMostRecentTen(t *testing.T) {
	var turns []session.Turn
	for i := 0; i < 15; i++ {
		turns = append(turns, session.Turn{Role: session.RoleUser, Content: strings.Repeat("x", i+1)})
	}

	got := FormatHistory(turns)
	lines := strings.Split(got, "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got: %d", len(lines))
	}
	if !strings.HasSuffix(lines[0], strings.Repeat("x", 6)) {
		t.Errorf("expected the window to start at turn 6, got: %q", lines[0])
	}
}

func TestFormatProducts_Empty(t *testing.T) {
	if got := FormatProducts(nil); got != noProductsSentence {
		t.Fatalf("expected the no-products sentence, got: %q", got)
	}
}

func TestFormatProducts_InferredAttributes(t *testing.T) {
	cases := []struct {
		name     string
		product  catalog.Product
		style    string
		material string
	}{
		{
			name:     "jacket",
			product:  catalog.Product{Title: "Áo khoác gió nam", Description: "chống nước"},
			style:    "outerwear",
			material: "polyester",
		},
		{
			name:     "linen shirt",
			product:  catalog.Product{Title: "Áo sơ mi linen", Description: "thoáng mát"},
			style:    "office",
			material: "linen",
		},
		{
			name:     "jeans",
			product:  catalog.Product{Title: "Quần jean slim", Description: ""},
			style:    "streetwear",
			material: "denim",
		},
		{
			name:     "unmatched defaults",
			product:  catalog.Product{Title: "Tất cổ ngắn", Description: "basic"},
			style:    defaultStyle,
			material: defaultMaterial,
		},
		{
			// "thể thao" outranks "khoác" in the style table.
			name:     "rule order",
			product:  catalog.Product{Title: "Áo khoác thể thao", Description: ""},
			style:    "sporty",
			material: defaultMaterial,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatProducts([]catalog.Product{tc.product})
			if !strings.Contains(got, "phong cách "+tc.style) {
				t.Errorf("expected style %q in %q", tc.style, got)
			}
			if !strings.Contains(got, "chất liệu "+tc.material) {
				t.Errorf("expected material %q in %q", tc.material, got)
			}
		})
	}
}

func TestFormatProducts_RendersPriceColorRating(t *testing.T) {
	p := catalog.Product{
		Title: "Áo thun", Price: 159000, Color: "trắng",
		Rating: 4.5, ReviewCount: 30,
	}

	got := FormatProducts([]catalog.Product{p})
	for _, want := range []string{"giá 159000đ", "màu trắng", "4.5/5", "(30 lượt)"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}
