// Package color styles terminal output. Color is on only when stdout is a
// terminal and NO_COLOR is unset; EnableColor overrides the detection.
package color

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	red       = color.New(color.FgRed)
	brightRed = color.New(color.FgHiRed)
	green     = color.New(color.FgGreen)
	yellow    = color.New(color.FgYellow)
	blue      = color.New(color.FgBlue)
	cyan      = color.New(color.FgCyan)
	gray      = color.New(color.FgHiBlack)
	bold      = color.New(color.Bold)
)

func init() {
	if os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func EnableColor(enable bool) {
	color.NoColor = !enable
}

func IsColorEnabled() bool {
	return !color.NoColor
}

func RedText(text string) string {
	return red.Sprint(text)
}

func BrightRedText(text string) string {
	return brightRed.Sprint(text)
}

func GreenText(text string) string {
	return green.Sprint(text)
}

func YellowText(text string) string {
	return yellow.Sprint(text)
}

func BlueText(text string) string {
	return blue.Sprint(text)
}

func CyanText(text string) string {
	return cyan.Sprint(text)
}

func GrayText(text string) string {
	return gray.Sprint(text)
}

func BoldText(text string) string {
	return bold.Sprint(text)
}

func Error(message string) string {
	if color.NoColor {
		return "Error: " + message
	}
	return BrightRedText("Error: ") + message
}

func Warning(message string) string {
	if color.NoColor {
		return "Warning: " + message
	}
	return YellowText("Warning: ") + message
}

func Success(message string) string {
	if color.NoColor {
		return "Success: " + message
	}
	return GreenText("Success: ") + message
}

// Offset renders a bytecode offset, right-aligned to width.
func Offset(pc, width int) string {
	return CyanText(fmt.Sprintf("%*d", width, pc))
}
