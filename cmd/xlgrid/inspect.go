package main

import (
	"fmt"

	"github.com/javajack/xlgrid"
	"github.com/spf13/cobra"
)

var renderRange string

var describeCmd = &cobra.Command{
	Use:   "describe <file.xlsx>",
	Short: "Summarize a worksheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSheet(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), s.Describe())
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <file.xlsx>",
	Short: "Print a range as a text table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSheet(args[0])
		if err != nil {
			return err
		}
		r, ok, err := resolveRange(s, renderRange)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "(empty sheet)")
			return nil
		}
		out, err := s.Render(r)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <file.xlsx>",
	Short: "Check a worksheet for inconsistencies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSheet(args[0])
		if err != nil {
			return err
		}
		issues := s.Verify()
		for _, is := range issues {
			fmt.Fprintln(cmd.OutOrStdout(), is)
		}
		for _, is := range issues {
			if is.Severity == xlgrid.SeverityError {
				return fmt.Errorf("%d issues found", len(issues))
			}
		}
		if len(issues) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
		}
		return nil
	},
}

// resolveRange parses ref, defaulting to the sheet dimensions.
func resolveRange(s *xlgrid.Sheet, ref string) (xlgrid.Range, bool, error) {
	if ref == "" {
		r, ok := s.Dimensions()
		return r, ok, nil
	}
	r, err := xlgrid.ParseRange(ref)
	if err != nil {
		return xlgrid.Range{}, false, err
	}
	return r, true, nil
}

func init() {
	renderCmd.Flags().StringVarP(&renderRange, "range", "r", "", "Range to render, e.g. A1:F20 (default: used range)")
	rootCmd.AddCommand(describeCmd, renderCmd, verifyCmd)
}
