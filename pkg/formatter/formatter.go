package formatter

import (
	"strconv"
	"strings"
)

// markdownV2Special lists the characters Telegram requires escaped in MarkdownV2.
const markdownV2Special = "_*[]()~`>#+-=|{}.!"

// FormatNumber groups thousands with commas.
// Example: 1234567 -> "1,234,567"
func FormatNumber(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var sb strings.Builder
	sb.WriteString(sign)
	head := len(digits) % 3
	if head > 0 {
		sb.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if sb.Len() > len(sign) {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// EscapeMarkdownV2 escapes special characters in Markdown V2 format
func EscapeMarkdownV2(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Special, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// TruncateMarkdownV2 cuts s to at most limit runes without leaving a
// dangling escape backslash at the end.
func TruncateMarkdownV2(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	runes = runes[:limit]

	trailing := 0
	for i := len(runes) - 1; i >= 0 && runes[i] == '\\'; i-- {
		trailing++
	}
	if trailing%2 == 1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
