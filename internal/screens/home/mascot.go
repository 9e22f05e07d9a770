package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default blue
	MascotCelebrating                      // Amber, star eyes: streak of three days or more
	MascotAlert                            // Rose, exclamation: home could not refresh the profile
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ </> │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ </> │
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ !
│  ▽  │
│ </> │
└─────┘`

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.Accent
	case MascotAlert:
		art = mascotAlert
		fg = theme.Error
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
