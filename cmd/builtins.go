package cmd

import (
	"fmt"
	"io"

	"github.com/josephlewis42/mshell/core/eval"
	"github.com/spf13/cobra"
)

// builtinsCmd lists the language reference
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the keywords and builtin words of the language.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Keywords:")
		printWords(out, eval.Keywords())

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Builtins:")
		printWords(out, eval.Builtins())

		return nil
	},
}

func printWords(w io.Writer, words []eval.Word) {
	for _, word := range words {
		fmt.Fprintf(w, "  %-13s %s\n", word.Name, word.Help)
	}
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
