package command

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// Command defines a REPL command.
type Command struct {
	Name         string
	Aliases      []string
	Usage        string
	Summary      string
	MinArgs      int
	MaxArgs      int // -1 for no limit
	RequiresAuth bool
}

// Line is a tokenized input line.
type Line struct {
	Command Command
	Args    []string
}

// Parse tokenizes line with shell quoting rules and resolves the command.
// An empty line yields ok == false and no error.
func Parse(commands map[string]Command, line string) (Line, bool, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return Line{}, false, fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) == 0 {
		return Line{}, false, nil
	}
	cmd, ok := commands[strings.ToLower(tokens[0])]
	if !ok {
		return Line{}, false, fmt.Errorf("unknown command: %s", tokens[0])
	}
	args := tokens[1:]
	if len(args) < cmd.MinArgs || (cmd.MaxArgs >= 0 && len(args) > cmd.MaxArgs) {
		return Line{}, false, fmt.Errorf("usage: %s", cmd.Usage)
	}
	return Line{Command: cmd, Args: args}, true, nil
}

// ParseIndex parses a one-based position as typed by the user into a zero-based index.
func ParseIndex(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q", value)
	}
	return n - 1, nil
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file failed: %w", err)
	}
	return string(data), nil
}
