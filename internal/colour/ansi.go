package colour

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI escape codes for 24-bit terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 2
)

// SupportsANSIColours reports whether stdout is a terminal that should receive
// colour escape codes. NO_COLOR (https://no-color.org) always disables them.
func SupportsANSIColours() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd())) // #nosec G115 -- file descriptors fit in int
}

// Preview returns a solid block of width spaces painted with c as background.
func Preview(c Colour, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	bg := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bg + strings.Repeat(" ", width) + ansiReset
}

// PreviewWithText paints text centred on a block of background c.
// The text is black or white, whichever contrasts more with c.
func PreviewWithText(c Colour, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	var fg Colour
	if c.Lab().L > 50 {
		fg = Black
	} else {
		fg = White
	}

	display := text
	if len(text) > width {
		display = text[:width]
	} else if len(text) < width {
		padding := (width - len(text)) / 2
		display = strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}

	bg := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	fgCode := fmt.Sprintf("%s%d;%d;%d%s", ansiFgPrefix, fg.R, fg.G, fg.B, ansiSuffix)
	return bg + fgCode + display + ansiReset
}

// FormatWithPreview formats a colour as its preview block followed by its hex code.
func FormatWithPreview(c Colour, width int) string {
	return fmt.Sprintf("%s %s", Preview(c, width), c.Hex())
}
