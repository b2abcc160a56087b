// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node of the CLI tree: a runnable leaf, a group of
// subcommands, or both (a group with a fallback Run for positional
// arguments).
type Command struct {
	// Name is the command name as typed by the user (e.g., "encode").
	Name string

	// Summary is the one-line description in the parent's command listing.
	Summary string

	// Description is the long-form help text. Shown after the usage line.
	Description string

	// Usage overrides the synthesized usage line
	// (e.g., "flexbuf encode [flags] [input]").
	Usage string

	// Examples are rendered at the end of the help output.
	Examples []Example

	// Flags builds this command's flag set. Called lazily; nil means
	// the command takes no flags.
	Flags func() *pflag.FlagSet

	// Subcommands are dispatched by the first positional argument.
	Subcommands []*Command

	// Run executes the leaf with the positional arguments left after
	// flag parsing. A group without Run prints its help when invoked
	// directly.
	Run func(args []string) error

	// parent is set while resolving, so errors and help can show the
	// full command path.
	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute resolves args against the command tree, parses flags, and
// runs the selected command.
func (c *Command) Execute(args []string) error {
	// Walk down the tree while the next argument names a subcommand.
	current := c
	for len(args) > 0 {
		if isHelpFlag(args[0]) {
			current.PrintHelp(os.Stderr)
			return nil
		}
		if strings.HasPrefix(args[0], "-") || len(current.Subcommands) == 0 {
			break
		}
		next := current.subcommand(args[0])
		if next == nil {
			if current.Run != nil {
				// Positional argument for the fallback Run.
				break
			}
			return current.unknownCommand(args[0])
		}
		next.parent = current
		current, args = next, args[1:]
	}
	return current.runLeaf(args)
}

// subcommand returns the subcommand with the given name, or nil.
func (c *Command) subcommand(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

// unknownCommand reports an argument that matched no subcommand. The
// structured context goes to the logger; the returned error stays
// short because main prints it verbatim.
func (c *Command) unknownCommand(name string) error {
	logger := NewLogger().With("command", c.fullName())
	suggestion := suggestCommand(name, c.Subcommands)
	if suggestion == "" {
		logger.Warn("unknown subcommand", "input", name)
		return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.",
			name, c.fullName())
	}
	logger.Warn("unknown subcommand", "input", name, "closest", suggestion)
	return fmt.Errorf("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
		name, suggestion, c.fullName())
}

// runLeaf parses flags and invokes Run on the resolved command.
func (c *Command) runLeaf(args []string) error {
	if c.Run == nil {
		// A group invoked without naming a child.
		c.PrintHelp(os.Stderr)
		if len(args) > 0 {
			return fmt.Errorf("subcommand required (got %q)", args[0])
		}
		return fmt.Errorf("subcommand required")
	}

	if c.Flags != nil {
		flagSet := c.Flags()
		// The framework formats its own parse errors, with
		// suggestions; silence pflag's default output and usage dump.
		flagSet.SetOutput(io.Discard)
		if err := flagSet.Parse(args); err != nil {
			return c.flagError(err, args)
		}
		args = flagSet.Args()
	}

	return c.Run(args)
}

// flagError decorates a pflag parse failure with the closest defined
// flag name and a pointer at the command's help.
func (c *Command) flagError(parseErr error, args []string) error {
	logger := NewLogger().With("command", c.fullName())
	if strings.Contains(parseErr.Error(), "unknown flag") {
		// Build a fresh flag set for the lookup: the failed parse
		// consumed state in the first one.
		if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
			logger.Warn("unknown flag", "args", strings.Join(args, " "), "closest", suggestion)
			return fmt.Errorf("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
				parseErr.Error(), suggestion, c.fullName())
		}
	}
	logger.Warn("flag parsing failed", "error", parseErr.Error())
	return fmt.Errorf("%s\n\nRun '%s --help' for usage.",
		parseErr.Error(), c.fullName())
}

// PrintHelp writes structured help to w: usage, description, command
// listing, flags, examples.
func (c *Command) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage:\n  %s\n", c.usageLine())

	if c.Description != "" {
		fmt.Fprintf(w, "\n%s\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", c.Summary)
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if c.Flags != nil {
		flagSet := c.Flags()
		var flagHelp strings.Builder
		flagSet.SetOutput(&flagHelp)
		flagSet.PrintDefaults()
		if flagHelp.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", c.fullName())
	}
}

// usageLine returns the explicit Usage, or synthesizes one from the
// command path and shape.
func (c *Command) usageLine() string {
	if c.Usage != "" {
		return c.Usage
	}
	if len(c.Subcommands) > 0 {
		return c.fullName() + " <command> [flags]"
	}
	return c.fullName() + " [flags]"
}

// fullName returns the complete command path (e.g., "flexbuf encode").
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

// isHelpFlag returns true for common help flag variants.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
