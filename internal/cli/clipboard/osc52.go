// Package clipboard copies text to the user's clipboard from a terminal.
package clipboard

import (
	"encoding/base64"
	"fmt"
	"io"
)

// maxPayload is the largest decoded payload most terminals accept in one sequence.
const maxPayload = 74994

// OSC52 writes the OSC 52 escape sequence, which asks the terminal emulator
// to set the system clipboard. It works over SSH and inside tmux with
// set-clipboard enabled; terminals that refuse it ignore the sequence.
type OSC52 struct {
	w io.Writer
}

func NewOSC52(w io.Writer) *OSC52 {
	return &OSC52{w: w}
}

func (o *OSC52) Copy(text string) error {
	if len(text) > maxPayload {
		return fmt.Errorf("clipboard payload too large: %d bytes", len(text))
	}
	seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
	if _, err := io.WriteString(o.w, seq); err != nil {
		return fmt.Errorf("write clipboard sequence failed: %w", err)
	}
	return nil
}
