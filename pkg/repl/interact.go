package repl

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"src.graf.sh/pkg/diag"
	"src.graf.sh/pkg/sys"
)

const prompt = "graf> "

// Runs the command loop until end of input or ":q". The prompt is only shown
// when stdin is a terminal.
func interact(fds [3]*os.File, s *Session) error {
	showPrompt := sys.IsATTY(fds[0].Fd())
	scanner := bufio.NewScanner(fds[0])
	for {
		if showPrompt {
			fmt.Fprint(fds[1], prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		err := s.Exec(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			diag.ShowError(fds[2], err)
		}
	}
}
