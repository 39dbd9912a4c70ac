package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/strscan/strscan"
)

func newFindCmd() *cobra.Command {
	var showCaptures bool

	cmd := &cobra.Command{
		Use:   "find <pattern> <file>",
		Short: "Print every match of a pattern with its line and column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, err := strscan.Compile(args[0])
			if err != nil {
				return fmt.Errorf("compile pattern: %w", err)
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			s, err := strscan.New(string(data))
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			n := runFind(cmd, s, pattern, args[1], showCaptures)
			log.Infof("%s: %d matches", args[1], n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showCaptures, "captures", "c", false, "print capture groups below each match")

	return cmd
}

// lineCounter tracks the line and column reached after consuming text.
type lineCounter struct {
	line, column int
}

func (lc *lineCounter) consume(text string) {
	for _, r := range text {
		if r == '\n' {
			lc.line++
			lc.column = 1
		} else {
			lc.column++
		}
	}
}

func runFind(cmd *cobra.Command, s *strscan.Scanner, pattern strscan.Pattern, name string, showCaptures bool) int {
	out := cmd.OutOrStdout()
	lc := lineCounter{line: 1, column: 1}
	count := 0

	for {
		chunk, ok := s.ScanUntil(pattern)
		if !ok {
			return count
		}
		m, _ := s.Match()
		lc.consume(chunk[:len(chunk)-len(m)])
		fmt.Fprintf(out, "%s:%d:%d: %s\n", name, lc.line, lc.column, m)
		lc.consume(m)
		count++

		if showCaptures {
			for i := 0; i < s.Captures(); i++ {
				if c, ok := s.Capture(i); ok {
					fmt.Fprintf(out, "\t$%d = %q\n", i+1, c)
				} else {
					fmt.Fprintf(out, "\t$%d unset\n", i+1)
				}
			}
		}
	}
}
