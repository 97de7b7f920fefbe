package banner

import (
	"diskmark/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	ascii := `
    ____  _      __   __  ___           __
   / __ \(_)____/ /__/  |/  /___ ______/ /__
  / / / / / ___/ //_/ /|_/ / __ '/ ___/ //_/
 / /_/ / (__  ) ,< / /  / / /_/ / /  / ,<
/_____/_/____/_/|_/_/  /_/\__,_/_/  /_/|_|  `

	return "\n" + style.Render(ascii) + "\n"
}
