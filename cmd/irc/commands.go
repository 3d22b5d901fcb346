package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/parser"
	"github.com/hassan/olivine/internal/printer"
	"github.com/hassan/olivine/internal/transform"
	"github.com/hassan/olivine/internal/validate"
)

func parseFiles(paths []string) ([]*ir.Module, error) {
	mods := make([]*ir.Module, len(paths))
	for i, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		mod, err := parser.Parse(string(src), path)
		if err != nil {
			return nil, err
		}
		mods[i] = mod
	}
	return mods, nil
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [files...]",
		Short: "Parse one or more IR files and print each parsed module",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mods, err := parseFiles(args)
			if err != nil {
				return err
			}
			var out string
			for _, m := range mods {
				out += printer.Module(m)
			}
			if err := writeOutput(cmd, out); err != nil {
				return err
			}
			ok("parsed " + pluralFiles(len(args)))
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [files...]",
		Short: "Parse and validate one or more IR files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mods, err := parseFiles(args)
			if err != nil {
				return err
			}
			for _, m := range mods {
				if err := validate.Module(m); err != nil {
					return err
				}
			}
			ok("validated " + pluralFiles(len(args)))
			return nil
		},
	}
}

func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link [files...]",
		Short: "Parse, link, validate, and print the combined module",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mods, err := parseFiles(args)
			if err != nil {
				return err
			}
			merged, err := transform.Link(mods)
			if err != nil {
				return err
			}
			if err := validate.Module(merged); err != nil {
				return err
			}
			if err := writeOutput(cmd, printer.Module(merged)); err != nil {
				return err
			}
			ok("linked " + pluralFiles(len(args)))
			return nil
		},
	}
}

func runDefault(cmd *cobra.Command, args []string) error {
	mods, err := parseFiles(args)
	if err != nil {
		return err
	}
	for _, m := range mods {
		if err := validate.Module(m); err != nil {
			return err
		}
	}
	var out string
	for _, m := range mods {
		out += printer.Module(m)
	}
	if err := writeOutput(cmd, out); err != nil {
		return err
	}
	ok("parsed and validated " + pluralFiles(len(args)))
	return nil
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return itoaSmall(n) + " files"
}

func itoaSmall(n int) string {
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	return string(buf)
}
