package repl

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"contesthub/internal/cli/command"
	"contesthub/internal/contest"

	"github.com/chzyer/readline"
)

const prompt = "contesthub> "

// Terminal is the interactive line editor: history, completion and
// password entry on top of readline.
type Terminal struct {
	rl *readline.Instance
}

func NewTerminal(historyFile string) (*Terminal, error) {
	if historyFile != "" {
		_ = os.MkdirAll(filepath.Dir(historyFile), 0o755)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}
	return &Terminal{rl: rl}, nil
}

func completer() *readline.PrefixCompleter {
	tabs := make([]readline.PrefixCompleterInterface, 0, len(contest.Statuses))
	for _, st := range contest.Statuses {
		tabs = append(tabs, readline.PcItem(string(st)))
	}
	items := make([]readline.PrefixCompleterInterface, 0)
	for _, cmd := range command.Sorted(command.Registry()) {
		switch cmd.Name {
		case "contests":
			items = append(items, readline.PcItem(cmd.Name, tabs...))
		case "set":
			items = append(items, readline.PcItem(cmd.Name, readline.PcItem("base"), readline.PcItem("timeout")))
		case "show":
			items = append(items, readline.PcItem(cmd.Name, readline.PcItem("config")))
		default:
			items = append(items, readline.PcItem(cmd.Name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

// Out is where command output goes so it does not clash with the prompt.
func (t *Terminal) Out() io.Writer { return t.rl.Stdout() }

// Next reads one command line. Ctrl-C on an empty line ends input.
func (t *Terminal) Next() (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		if line == "" {
			return "", io.EOF
		}
		return "", nil
	}
	return line, err
}

func (t *Terminal) Prompt(label string) (string, error) {
	t.rl.SetPrompt(label + ": ")
	defer t.rl.SetPrompt(prompt)
	return t.rl.Readline()
}

func (t *Terminal) Password(label string) (string, error) {
	pw, err := t.rl.ReadPassword(label + ": ")
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func (t *Terminal) ReadBlock(label string) (string, error) {
	_, _ = io.WriteString(t.rl.Stdout(), label+"\n")
	t.rl.SetPrompt("")
	defer t.rl.SetPrompt(prompt)
	var lines []string
	for {
		line, err := t.rl.Readline()
		if err != nil {
			return "", err
		}
		if line == "." {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}

func (t *Terminal) Close() error {
	return t.rl.Close()
}
