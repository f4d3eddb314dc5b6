package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
)

// parseScript splits a script into command lines. Blank lines and #
// comments are skipped; everything else is tokenized shell-style, so
// quoting works the same as at the prompt.
func parseScript(src string) ([][]string, error) {
	var out [][]string
	for i, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields, err := shlex.Split(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if len(fields) == 0 {
			continue
		}
		out = append(out, fields)
	}
	return out, nil
}

// Play runs the commands in file one after another. It stops when a
// line cannot be tokenized or names an unknown command; failures
// inside a command are printed by the command itself.
func (s *Shell) Play(file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	lines, err := parseScript(string(src))
	if err != nil {
		return err
	}
	for _, fields := range lines {
		s.Logger.Debug().Strs("cmd", fields).Msg("play")
		if err := s.Shell.Process(fields...); err != nil {
			return fmt.Errorf("%s: %w", strings.Join(fields, " "), err)
		}
	}
	return nil
}
