package clipboard

import (
	"regexp"
	"strings"
)

// DataType values stored in an item's data_type column.
const (
	DataTypeURL   = "url"
	DataTypeEmail = "email"
	DataTypeColor = "color"
	DataTypeCode  = "code"
	DataTypeText  = "text"
)

var (
	urlPattern   = regexp.MustCompile(`^(https?|ftp)://\S+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

	codeMarkers = []string{
		"func ", "function ", "def ", "class ", "import ", "#include",
		"=>", "();", "{}", "</", "const ", "let ", "var ", "return ",
	}
)

// Classify derives a finer data_type for text content by pattern inspection.
func Classify(content string) string {
	trimmed := strings.TrimSpace(content)

	switch {
	case urlPattern.MatchString(trimmed):
		return DataTypeURL
	case emailPattern.MatchString(trimmed):
		return DataTypeEmail
	case colorPattern.MatchString(trimmed):
		return DataTypeColor
	case looksLikeCode(trimmed):
		return DataTypeCode
	default:
		return DataTypeText
	}
}

// looksLikeCode is a structural heuristic: multi-line content with brace or
// indentation structure, or a line carrying a recognizable keyword.
func looksLikeCode(content string) bool {
	if strings.Contains(content, "```") {
		return true
	}

	for _, marker := range codeMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}

	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return false
	}
	structured := 0
	for _, line := range lines {
		t := strings.TrimRight(line, " \t")
		if strings.HasSuffix(t, "{") || strings.HasSuffix(t, "}") ||
			strings.HasSuffix(t, ";") || strings.HasPrefix(line, "\t") ||
			strings.HasPrefix(line, "    ") {
			structured++
		}
	}
	return structured*2 >= len(lines)
}
