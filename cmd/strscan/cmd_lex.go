package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/strscan/rulelex"
)

func newLexCmd() *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "lex --rules <file> <input>",
		Short: "Tokenize a file with a list of regular expression rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(rulesFile)
			if err != nil {
				return fmt.Errorf("open rules: %w", err)
			}
			defer f.Close()

			rules, err := rulelex.ParseRules(rulesFile, f)
			if err != nil {
				return err
			}
			log.Debugf("loaded %d rules from %s", len(rules), rulesFile)

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			lexer, err := rulelex.New(rules, string(data))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			tokens, err := lexer.All()
			for _, tok := range tokens {
				fmt.Fprintln(cmd.OutOrStdout(), tok)
			}
			if err != nil {
				return fmt.Errorf("%s:%w", args[0], err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "rules file (Name = /regexp/ per line)")
	cmd.MarkFlagRequired("rules")

	return cmd
}
