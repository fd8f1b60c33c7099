package speech

import (
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLanguage converts a user-supplied language hint into the two
// letter base tag transcription engines expect. "auto" and empty both mean
// automatic detection and map to the empty string. An unparseable hint also
// maps to empty so a bad hint degrades to detection rather than failing.
func NormalizeLanguage(hint string) string {
	cleaned := strings.ToLower(strings.TrimSpace(hint))
	if cleaned == "" || cleaned == "auto" {
		return ""
	}
	tag, err := language.Parse(cleaned)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}
