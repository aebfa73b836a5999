package platforms

import "strings"

// Category is the semantic tag assigned to every link. Each link gets exactly one.
type Category string

const (
	CategoryChannel        Category = "channel"
	CategoryGroup          Category = "group"
	CategoryBot            Category = "bot"
	CategoryMessage        Category = "message"
	CategoryWhatsAppGroup  Category = "whatsapp-group"
	CategoryWhatsAppNumber Category = "whatsapp-number"
	CategoryOther          Category = "other"
)

type categoryInfo struct {
	title    string
	fileName string
}

// categoryTable is the single source of truth for titles and artifact names.
var categoryTable = map[Category]categoryInfo{
	CategoryChannel:        {title: "Channel links", fileName: "channels.txt"},
	CategoryGroup:          {title: "Group links", fileName: "groups.txt"},
	CategoryBot:            {title: "Bot links", fileName: "bots.txt"},
	CategoryMessage:        {title: "Message links", fileName: "messages.txt"},
	CategoryWhatsAppGroup:  {title: "WhatsApp group links", fileName: "whatsapp_groups.txt"},
	CategoryWhatsAppNumber: {title: "WhatsApp number links", fileName: "whatsapp_numbers.txt"},
	CategoryOther:          {title: "Other links", fileName: "other.txt"},
}

// Categories returns every category in artifact order.
func Categories() []Category {
	return []Category{
		CategoryChannel,
		CategoryGroup,
		CategoryMessage,
		CategoryBot,
		CategoryWhatsAppGroup,
		CategoryWhatsAppNumber,
		CategoryOther,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// Title returns the human-readable title shown next to an artifact.
func (c Category) Title() string {
	return categoryTable[c].title
}

// FileName returns the artifact file name, e.g. "channels.txt".
func (c Category) FileName() string {
	return categoryTable[c].fileName
}

// ParseCategory accepts a category name ("bot") or its file name, with or
// without the extension ("bots.txt", "bots"). Matching ignores case.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		file := c.FileName()
		if string(c) == s || file == s || strings.TrimSuffix(file, ".txt") == s {
			return c, true
		}
	}

	return "", false
}
