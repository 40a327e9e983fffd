package note

import (
	"sort"
	"time"
)

type Color string

const (
	ColorDefault Color = "default"
	ColorYellow  Color = "yellow"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorPink    Color = "pink"
	ColorPurple  Color = "purple"
)

func (c Color) IsValid() bool {
	switch c {
	case ColorDefault, ColorYellow, ColorGreen, ColorBlue, ColorPink, ColorPurple:
		return true
	}
	return false
}

type Note struct {
	Id        string
	Title     string
	Content   string
	IsPinned  bool
	Color     Color
	ProjectId string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SortNotes orders pinned notes first, then most recently updated. The input
// is left untouched.
func SortNotes(notes []Note) []Note {
	sorted := make([]Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsPinned != sorted[j].IsPinned {
			return sorted[i].IsPinned
		}
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	return sorted
}
