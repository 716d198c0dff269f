package keymanager

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sonson0910/Moderntensor/interfaces"
)

// ReaderConfirm asks yes/no questions by writing the prompt to Out and
// reading one answer line from In. "yes" and "y" (case-insensitive) affirm;
// any other answer declines. It is the interactive ConfirmPrompt used by the
// CLI over stdin/stdout.
type ReaderConfirm struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements interfaces.ConfirmPrompt.
func (r *ReaderConfirm) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprint(r.Out, prompt); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(r.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}

// AlwaysConfirm returns a ConfirmPrompt with a predetermined answer, for
// non-interactive deployments and tests.
func AlwaysConfirm(answer bool) interfaces.ConfirmPrompt {
	return interfaces.ConfirmFunc(func(string) (bool, error) { return answer, nil })
}

// RefuseConfirm returns a ConfirmPrompt that rejects the operation with err
// instead of asking. Services without an interactive channel use it so a
// conflicting import surfaces as an error rather than a silent no-op.
func RefuseConfirm(err error) interfaces.ConfirmPrompt {
	return interfaces.ConfirmFunc(func(string) (bool, error) { return false, err })
}
