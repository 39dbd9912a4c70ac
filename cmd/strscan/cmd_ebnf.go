package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/strscan/ebnflex"
)

func newEbnfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ebnf",
		Short: "EBNF grammar tools",
	}

	cmd.AddCommand(newEbnfCheckCmd())
	cmd.AddCommand(newEbnfTokensCmd())
	cmd.AddCommand(newEbnfLexCmd())

	return cmd
}

func newEbnfCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and verify an EBNF grammar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			grammar, err := ebnf.Parse(filename, f)
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return errors.New("grammar has syntax errors")
			}

			if startProduction == "" {
				return nil
			}
			if err := ebnf.Verify(grammar, startProduction); err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return errors.New("grammar failed verification")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

func newEbnfTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the regular expression compiled for each token production",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grammar, err := ebnflex.LoadGrammar(args[0])
			if err != nil {
				return err
			}
			patterns, err := ebnflex.CompileTokens(grammar)
			if err != nil {
				return err
			}
			for _, p := range patterns {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = /%s/\n", p.Name, p.Expr)
			}
			return nil
		},
	}
}

func newEbnfLexCmd() *cobra.Command {
	var grammarFile string
	var skipKinds []string

	cmd := &cobra.Command{
		Use:   "lex --grammar <file> <input>",
		Short: "Tokenize a file with the token productions of an EBNF grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grammar, err := ebnflex.LoadGrammar(grammarFile)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			lexer, err := ebnflex.NewLexer(grammar, data, args[0])
			if err != nil {
				return err
			}
			lexer.SetSkipKinds(skipKinds...)

			for {
				tok, err := lexer.NextToken()
				fmt.Fprintln(cmd.OutOrStdout(), tok)
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().StringVar(&grammarFile, "grammar", "", "EBNF grammar file")
	cmd.Flags().StringSliceVar(&skipKinds, "skip", nil, "token kinds to drop from the output")
	cmd.MarkFlagRequired("grammar")

	return cmd
}

func printErrors(w io.Writer, err error) {
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(w, v.Index(i).Interface())
		}
	} else {
		fmt.Fprintln(w, err)
	}
}
