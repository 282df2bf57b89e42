package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Item is one question about one image, with the accepted reference answers.
type Item struct {
	ID        string   `json:"id" yaml:"id" parquet:"id"`
	ImagePath string   `json:"image_path" yaml:"image_path" parquet:"image_path"`
	Question  string   `json:"question" yaml:"question" parquet:"question"`
	Answers   []string `json:"answers" yaml:"answers" parquet:"answers,list"`
}

// Validate reports the first missing required field.
func (i Item) Validate() error {
	switch {
	case strings.TrimSpace(i.ImagePath) == "":
		return fmt.Errorf("item %q: image_path is required", i.ID)
	case strings.TrimSpace(i.Question) == "":
		return fmt.Errorf("item %q: question is required", i.ID)
	}
	return nil
}

// ResolveImagePath returns the image path, relative paths anchored at baseDir.
// URLs are returned unchanged.
func (i Item) ResolveImagePath(baseDir string) string {
	if IsURL(i.ImagePath) || filepath.IsAbs(i.ImagePath) {
		return i.ImagePath
	}
	return filepath.Join(baseDir, i.ImagePath)
}

func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
