package models

import (
	"time"

	"github.com/google/uuid"
)

// Theme is the UI theme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ValidTheme reports whether t is a known theme value.
func ValidTheme(t Theme) bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// UserPreferences holds per-user display settings and bookmarked article slugs.
type UserPreferences struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	Language  string    `json:"language"`
	Theme     Theme     `json:"theme"`
	Bookmarks []string  `json:"bookmarks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
