package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"toggl-opsync/internal/sync"
)

// NewConfirm returns a ConfirmFunc that prints the prompt to out and reads a
// yes/no answer from in. Anything other than "y" or "yes" (case-insensitive)
// counts as a decline, including an empty answer or a closed stdin, so a
// non-interactive invocation without --yes never submits.
func NewConfirm(in io.Reader, out io.Writer) sync.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}
