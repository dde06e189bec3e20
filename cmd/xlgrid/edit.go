package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javajack/xlgrid"
	"github.com/spf13/cobra"
)

var (
	findOpts   xlgrid.FindOptions
	findIn     string
	findRange  string
	outputPath string

	sortKeys    []string
	sortHeader  bool
	sortNumeric bool
	sortCase    bool

	filterCol      string
	filterHeader   bool
	filterEquals   string
	filterContains string
	filterExpr     string
	filterEmpty    bool
)

var findCmd = &cobra.Command{
	Use:   "find <file.xlsx> <query>",
	Short: "List cells matching a query",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSheet(args[0])
		if err != nil {
			return err
		}
		opts, err := searchOptions()
		if err != nil {
			return err
		}
		cells, err := s.FindAll(args[1], opts)
		if err != nil {
			return err
		}
		for _, c := range cells {
			line := fmt.Sprintf("%s\t%s", c.Address(), c.Value())
			if f := c.FormulaText(); f != "" {
				line += "\t=" + f
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", len(cells))
		return nil
	},
}

var replaceCmd = &cobra.Command{
	Use:   "replace <file.xlsx> <query> <replacement>",
	Short: "Replace matches and save the workbook",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSheet(args[0])
		if err != nil {
			return err
		}
		opts, err := searchOptions()
		if err != nil {
			return err
		}
		n, err := s.ReplaceAll(args[1], args[2], opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d cells replaced\n", n)
		if n == 0 {
			return nil
		}
		if err := syncJournal(s); err != nil {
			return err
		}
		return saveSheet(s, args[0], outputPath)
	},
}

var sortCmd = &cobra.Command{
	Use:   "sort <file.xlsx>",
	Short: "Sort rows and save the workbook",
	Long: `Sort the used range of a worksheet by one or more columns.

Each -k takes a column letter with optional modifiers separated by
colons: "desc" for descending, "num" to compare numeric text as numbers,
"case" for case-sensitive text. The first key has the highest priority.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := parseSortKeys(sortKeys)
		if err != nil {
			return err
		}
		s, err := loadSheet(args[0])
		if err != nil {
			return err
		}
		opts := xlgrid.SortOptions{HasHeader: sortHeader, Numeric: sortNumeric, CaseSensitive: sortCase}
		if err := s.SortBy(keys, opts); err != nil {
			return err
		}
		return saveSheet(s, args[0], outputPath)
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter <file.xlsx>",
	Short: "Print the rows that pass a column filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := xlgrid.NameToCol(filterCol)
		if err != nil {
			return err
		}
		c, err := filterCriteria()
		if err != nil {
			return err
		}
		s, err := loadSheet(args[0])
		if err != nil {
			return err
		}
		if err := s.Filter(col, c, xlgrid.FilterOptions{HasHeader: filterHeader}); err != nil {
			return err
		}
		r, ok := s.Dimensions()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "(empty sheet)")
			return nil
		}
		out, err := s.Render(r)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		fmt.Fprintf(cmd.OutOrStdout(), "%d rows hidden\n", len(s.FilteredRows()))
		return nil
	},
}

func searchOptions() (xlgrid.FindOptions, error) {
	opts := findOpts
	switch findIn {
	case "values", "":
		opts.In = xlgrid.SearchValues
	case "formulas":
		opts.In = xlgrid.SearchFormulas
	case "both":
		opts.In = xlgrid.SearchBoth
	default:
		return opts, fmt.Errorf("unknown --in %q (want values, formulas or both)", findIn)
	}
	if findRange != "" {
		r, err := xlgrid.ParseRange(findRange)
		if err != nil {
			return opts, err
		}
		opts.Range = &r
	}
	return opts, nil
}

// parseSortKeys parses "B", "C:desc" or "D:desc:num" into sort keys.
func parseSortKeys(specs []string) ([]xlgrid.SortKey, error) {
	if len(specs) == 0 {
		return nil, errors.New("at least one -k column is required")
	}
	keys := make([]xlgrid.SortKey, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		col, err := xlgrid.NameToCol(parts[0])
		if err != nil {
			return nil, fmt.Errorf("sort key %q: %w", spec, err)
		}
		k := xlgrid.SortKey{Column: col}
		for _, mod := range parts[1:] {
			switch strings.ToLower(mod) {
			case "desc":
				k.Descending = true
			case "asc":
				k.Descending = false
			case "num":
				k.Numeric = true
			case "case":
				k.CaseSensitive = true
			default:
				return nil, fmt.Errorf("sort key %q: unknown modifier %q", spec, mod)
			}
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func filterCriteria() (xlgrid.Criteria, error) {
	var set []xlgrid.Criteria
	if filterEquals != "" {
		set = append(set, xlgrid.Equals(filterEquals))
	}
	if filterContains != "" {
		set = append(set, xlgrid.Contains(filterContains))
	}
	if filterExpr != "" {
		set = append(set, xlgrid.Expr(filterExpr))
	}
	if filterEmpty {
		set = append(set, xlgrid.IsNotEmpty())
	}
	if len(set) != 1 {
		return xlgrid.Criteria{}, errors.New("exactly one of --equals, --contains, --expr or --not-empty is required")
	}
	return set[0], nil
}

func init() {
	for _, c := range []*cobra.Command{findCmd, replaceCmd} {
		c.Flags().BoolVar(&findOpts.MatchCase, "match-case", false, "Case-sensitive matching")
		c.Flags().BoolVar(&findOpts.WholeCell, "whole", false, "Match the whole cell content")
		c.Flags().BoolVarP(&findOpts.Regexp, "regexp", "E", false, "Treat the query as a regular expression")
		c.Flags().StringVar(&findIn, "in", "values", "Search values, formulas or both")
		c.Flags().StringVarP(&findRange, "range", "r", "", "Restrict the search to a range, e.g. A1:D50")
	}
	for _, c := range []*cobra.Command{replaceCmd, sortCmd} {
		c.Flags().StringVarP(&outputPath, "output", "o", "", "Write to this file instead of overwriting the input")
	}

	sortCmd.Flags().StringArrayVarP(&sortKeys, "key", "k", nil, "Sort column with modifiers, e.g. B or C:desc:num (repeatable)")
	sortCmd.Flags().BoolVar(&sortHeader, "header", false, "Keep the first row in place")
	sortCmd.Flags().BoolVar(&sortNumeric, "numeric", false, "Compare numeric text as numbers for every key")
	sortCmd.Flags().BoolVar(&sortCase, "case-sensitive", false, "Case-sensitive text comparison for every key")

	filterCmd.Flags().StringVarP(&filterCol, "col", "c", "A", "Column to filter")
	filterCmd.Flags().BoolVar(&filterHeader, "header", false, "Never hide the first row")
	filterCmd.Flags().StringVar(&filterEquals, "equals", "", "Keep rows equal to this value (case-insensitive)")
	filterCmd.Flags().StringVar(&filterContains, "contains", "", "Keep rows containing this text")
	filterCmd.Flags().StringVar(&filterExpr, "expr", "", "Keep rows where this expression holds")
	filterCmd.Flags().BoolVar(&filterEmpty, "not-empty", false, "Keep rows with a value")

	rootCmd.AddCommand(findCmd, replaceCmd, sortCmd, filterCmd)
}
