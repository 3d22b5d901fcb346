// Command irc is the command-line driver for the IR toolchain: parsing,
// linking, validating, and pretty-printing.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fail(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "irc [files...]",
		Short:         "Parse, check, and print a textual IR module",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE:          runDefault,
	}
	root.PersistentFlags().StringP("output", "o", "", "write output to file instead of stdout")
	root.AddCommand(newParseCmd(), newCheckCmd(), newLinkCmd())
	return root
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
	os.Exit(1)
}

func ok(msg string) {
	fmt.Fprintln(os.Stderr, color.GreenString("ok:"), msg)
}

func writeOutput(cmd *cobra.Command, text string) error {
	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		_, err := fmt.Fprint(os.Stdout, text)
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprint(f, text)
	return err
}
