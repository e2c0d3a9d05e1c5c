package assistant

import (
	"fmt"
	"strings"

	"shopassist/internal/catalog"
	"shopassist/internal/session"
)

// historyWindow is how many recent turns go into the generation context.
const historyWindow = 10

const (
	firstTurnSentence  = "Đây là tin nhắn đầu tiên của khách hàng, chưa có lịch sử trò chuyện."
	noProductsSentence = "Không tìm thấy sản phẩm nào phù hợp với yêu cầu."

	userLabel      = "Khách hàng"
	assistantLabel = "Trợ lý"

	defaultStyle    = "casual"
	defaultMaterial = "cotton blend"
)

// styleRules and materialRules map keyword patterns in the lowercased
// title+description to inferred tags. Order matters: the first matching
// rule wins.
var styleRules = []attributeRule{
	{keywords: []string{"thể thao", "sport", "gym"}, value: "sporty"},
	{keywords: []string{"khoác", "jacket", "coat", "blazer"}, value: "outerwear"},
	{keywords: []string{"sơ mi", "công sở", "shirt"}, value: "office"},
	{keywords: []string{"váy", "đầm", "dress"}, value: "elegant"},
	{keywords: []string{"jean", "denim", "streetwear"}, value: "streetwear"},
	{keywords: []string{"áo len", "sweater", "cardigan"}, value: "cozy"},
}

var materialRules = []attributeRule{
	{keywords: []string{"jean", "denim"}, value: "denim"},
	// "linen" before "len": the shorter keyword is a substring of it.
	{keywords: []string{"linen", "lanh"}, value: "linen"},
	{keywords: []string{"len", "wool", "dệt kim"}, value: "wool knit"},
	{keywords: []string{"lụa", "silk"}, value: "silk"},
	{keywords: []string{"da thật", "leather"}, value: "leather"},
	{keywords: []string{"gió", "chống nước", "polyester"}, value: "polyester"},
}

type attributeRule struct {
	keywords []string
	value    string
}

func matchRule(rules []attributeRule, text, def string) string {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.value
			}
		}
	}
	return def
}

// FormatHistory renders up to the most recent 10 turns as labeled lines,
// oldest first. An empty history renders a fixed first-turn sentence.
func FormatHistory(turns []session.Turn) string {
	if len(turns) == 0 {
		return firstTurnSentence
	}
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := userLabel
		if turn.Role == session.RoleAssistant {
			label = assistantLabel
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}
	return b.String()
}

// FormatProducts renders each product with price, color, rating and the
// inferred style and material tags. An empty list renders a fixed
// no-products sentence.
func FormatProducts(products []catalog.Product) string {
	if len(products) == 0 {
		return noProductsSentence
	}

	var b strings.Builder
	for i, p := range products {
		if i > 0 {
			b.WriteByte('\n')
		}
		text := strings.ToLower(p.Title + " " + p.Description)
		style := matchRule(styleRules, text, defaultStyle)
		material := matchRule(materialRules, text, defaultMaterial)
		fmt.Fprintf(&b, "- %s: giá %dđ, màu %s, đánh giá %.1f/5 (%d lượt), phong cách %s, chất liệu %s",
			p.Title, p.Price, orUnknown(p.Color), p.Rating, p.ReviewCount, style, material)
	}
	return b.String()
}

func orUnknown(value string) string {
	if value == "" {
		return "không rõ"
	}
	return value
}
