// Package classify maps file extensions to organizer categories.
package classify

import (
	"path/filepath"
	"sort"
	"strings"
)

// DefaultCategory is the bucket for unrecognized or missing extensions.
const DefaultCategory = "Other"

// DefaultTable is the built-in extension table, keyed by category name.
// Extensions include the leading dot and are matched case-insensitively.
var DefaultTable = map[string][]string{
	"Documents": {".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".xls", ".xlsx", ".ppt", ".pptx"},
	"Images":    {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".ico", ".tiff", ".heic"},
	"Videos":    {".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm", ".m4v"},
	"Audio":     {".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a"},
	"Archives":  {".zip", ".tar", ".gz", ".rar", ".7z", ".bz2", ".xz", ".dmg"},
	"Code":      {".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".cpp", ".c", ".h", ".go", ".rs", ".rb", ".php", ".swift"},
	"Apps":      {".app", ".pkg", ".exe", ".msi"},
}

// Classifier maps file paths to category names. It is deterministic, pure,
// and total: every path gets a category.
type Classifier struct {
	byExt map[string]string
}

// New creates a Classifier from a category→extensions table. A nil or empty
// table uses DefaultTable. When two categories claim the same extension the
// winner is the lexicographically first category, keeping the result
// independent of map iteration order.
func New(table map[string][]string) *Classifier {
	if len(table) == 0 {
		table = DefaultTable
	}

	categories := make([]string, 0, len(table))
	for cat := range table {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	byExt := make(map[string]string)
	for _, cat := range categories {
		for _, ext := range table[cat] {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if _, taken := byExt[ext]; !taken {
				byExt[ext] = cat
			}
		}
	}

	return &Classifier{byExt: byExt}
}

// Classify returns the category for a file path based on its extension.
// Matching is case-insensitive; unknown and missing extensions map to
// DefaultCategory.
func (c *Classifier) Classify(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if cat, ok := c.byExt[ext]; ok {
		return cat
	}
	return DefaultCategory
}

// Categories returns the sorted list of category names the classifier can
// produce, including DefaultCategory.
func (c *Classifier) Categories() []string {
	seen := map[string]struct{}{DefaultCategory: {}}
	for _, cat := range c.byExt {
		seen[cat] = struct{}{}
	}
	cats := make([]string, 0, len(seen))
	for cat := range seen {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}
