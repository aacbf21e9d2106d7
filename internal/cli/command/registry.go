package command

import (
	"sort"
	"strings"
)

// Registry returns all REPL commands keyed by name and alias.
func Registry() map[string]Command {
	commands := []Command{
		{
			Name:    "login",
			Usage:   "login <username> [role]",
			Summary: "remember who you are on this machine",
			MinArgs: 1,
			MaxArgs: 2,
		},
		{
			Name:    "logout",
			Usage:   "logout",
			Summary: "forget the stored identity",
			MaxArgs: 0,
		},
		{
			Name:    "whoami",
			Usage:   "whoami",
			Summary: "show the current identity",
			MaxArgs: 0,
		},
		{
			Name:    "contests",
			Aliases: []string{"ls"},
			Usage:   "contests [upcoming|running|previous] [search...]",
			Summary: "list contests of a tab, optionally filtered by title",
			MaxArgs: -1,
		},
		{
			Name:         "create-contest",
			Usage:        "create-contest",
			Summary:      "start creating a contest",
			MaxArgs:      0,
			RequiresAuth: true,
		},
		{
			Name:         "participate",
			Usage:        "participate <contestId>",
			Summary:      "enter a running contest and load its problems",
			MinArgs:      1,
			MaxArgs:      1,
			RequiresAuth: true,
		},
		{
			Name:    "view",
			Usage:   "view <contestId>",
			Summary: "show a finished contest",
			MinArgs: 1,
			MaxArgs: 1,
		},
		{
			Name:    "problems",
			Usage:   "problems",
			Summary: "list the problems of the current contest",
			MaxArgs: 0,
		},
		{
			Name:    "problem",
			Usage:   "problem <pid>",
			Summary: "select a problem and show its statement and test cases",
			MinArgs: 1,
			MaxArgs: 1,
		},
		{
			Name:    "copy",
			Usage:   "copy <n> input|output",
			Summary: "copy a test case to the clipboard",
			MinArgs: 2,
			MaxArgs: 2,
		},
		{
			Name:         "submit",
			Usage:        "submit [file]",
			Summary:      "submit a solution from a file, or type it in",
			MaxArgs:      1,
			RequiresAuth: true,
		},
		{
			Name:    "status",
			Usage:   "status",
			Summary: "show the state of the current problem view",
			MaxArgs: 0,
		},
		{
			Name:    "register",
			Usage:   "register",
			Summary: "sign up as a contest administrator",
			MaxArgs: 0,
		},
		{
			Name:    "set",
			Usage:   "set base <url> | set timeout <duration>",
			Summary: "change client settings",
			MinArgs: 2,
			MaxArgs: 2,
		},
		{
			Name:    "show",
			Usage:   "show config",
			Summary: "print client settings",
			MinArgs: 1,
			MaxArgs: 1,
		},
		{
			Name:    "help",
			Usage:   "help",
			Summary: "list commands",
			MaxArgs: 0,
		},
		{
			Name:    "exit",
			Aliases: []string{"quit"},
			Usage:   "exit",
			Summary: "leave",
			MaxArgs: 0,
		},
	}

	registry := make(map[string]Command, len(commands)*2)
	for _, cmd := range commands {
		registry[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			registry[strings.ToLower(alias)] = cmd
		}
	}
	return registry
}

// Sorted returns each command once, ordered by name.
func Sorted(registry map[string]Command) []Command {
	seen := make(map[string]struct{}, len(registry))
	out := make([]Command, 0, len(registry))
	for _, cmd := range registry {
		if _, ok := seen[cmd.Name]; ok {
			continue
		}
		seen[cmd.Name] = struct{}{}
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
