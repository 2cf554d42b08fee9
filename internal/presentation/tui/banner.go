package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown by interactive commands.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Subtle gradient, indigo through rose.
	s1 := termenv.String("      _                       _          ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String("  ___| |_ ___ _ ____      __ (_)___  ___ ").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(" / __| __/ _ \\ '_ \\ \\ /\\ / / | / __|/ _ \\").Foreground(p.Color("#c084fc"))
	s4 := termenv.String(" \\__ \\ ||  __/ |_) \\ V  V /  | \\__ \\  __/").Foreground(p.Color("#e879f9"))
	s5 := termenv.String(" |___/\\__\\___| .__/ \\_/\\_/   |_|___/\\___|").Foreground(p.Color("#f472b6"))
	s6 := termenv.String("             |_|                         ").Foreground(p.Color("#fb7185"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
