package observability

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	colorReset    = "\033[0m"
	colorNeonCyan = "\033[96m"
)

// termMu synchronizes terminal output so banner writes and log writes
// never interleave mid-line.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput().
func NewTermWriter() *termWriter {
	return &termWriter{}
}

func PrintBanner() {
	banner := `
   _____ ____  __ _    ________  ________
  / ___// __ \/ /| |  / / ____/ |/ /_  __/
  \__ \/ / / / / | | / / __/ /    / / /
 ___/ / /_/ / /__| |/ / /___/ /|_/ / /
/____/\____/____/|___/_____/_/ |_/_/

     >> PLAN / EXECUTE / VERIFY <<
`

	width := termWidth()
	lines := strings.Split(banner, "\n")

	for _, l := range lines {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}
