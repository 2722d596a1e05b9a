package output

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/lib/collections"
)

type OutputFormat string

const (
	TableFormat OutputFormat = "table"
	CSVFormat   OutputFormat = "csv"
	JSONFormat  OutputFormat = "json"
	YAMLFormat  OutputFormat = "yaml"
)

var AllFormats = []OutputFormat{TableFormat, CSVFormat, JSONFormat, YAMLFormat}

func (o *OutputFormat) String() string {
	return string(*o)
}

func (o *OutputFormat) Set(value string) error {
	for _, format := range AllFormats {
		if value == string(format) {
			*o = format
			return nil
		}
	}
	return fmt.Errorf("invalid format %q, must be one of %v", value, AllFormats)
}

func (o *OutputFormat) Type() string {
	return "format"
}

// AddOutputFlags registers the shared output format flags on a command.
func AddOutputFlags(cmd *cobra.Command, options *OutputOptions) {
	cmd.Flags().VarP(&options.Format, "output", "o",
		fmt.Sprintf("The output format for the summary tables. One of: %v.", AllFormats))
	cmd.Flags().BoolVar(&options.Pretty, "pretty", options.Pretty,
		"Pretty print JSON output. Only applies to json output.")
	cmd.Flags().BoolVar(&options.HideHeader, "hide-header", options.HideHeader,
		"Do not print the column headers.")
	cmd.Flags().BoolVar(&options.Wide, "wide", options.Wide,
		"Print full values in the table results.")
}

var noStyle = table.Style{
	Name:   "StyleDefault",
	Box:    table.StyleBoxDefault,
	Color:  table.ColorOptionsDefault,
	Format: table.FormatOptionsDefault,
	HTML:   table.DefaultHTMLOptions,
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  false,
		SeparateHeader:  false,
		SeparateRows:    false,
	},
	Title: table.TitleOptionsDefault,
}

type OutputOptions struct {
	Format     OutputFormat // The output format for the list of jobs
	Pretty     bool         // Pretty print the output
	HideHeader bool         // Hide the column headers
	NoStyle    bool         // Remove all styling from table output
	Wide       bool         // Print full values in the table results
	SortBy     []table.SortBy
}

type TableColumn[T any] struct {
	table.ColumnConfig
	Value func(T) string
}

// Output renders items in the requested format. Table and CSV formats
// use the column definitions; JSON and YAML marshal the items directly.
func Output[T any](cmd *cobra.Command, columns []TableColumn[T], options OutputOptions, items []T) error {
	switch options.Format {
	case TableFormat, CSVFormat:
		outputTable[T](cmd, columns, options, items)
		return nil
	case JSONFormat:
		encoder := json.NewEncoder(cmd.OutOrStdout())
		if options.Pretty {
			encoder.SetIndent("", "  ")
		}
		return encoder.Encode(items)
	case YAMLFormat:
		b, err := yaml.Marshal(items)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	default:
		return fmt.Errorf("invalid format %q", options.Format)
	}
}

// KeyValue prints a list of key-value pairs in a human-readable format
// with the keys aligned. Pairs with an empty value are skipped.
func KeyValue(cmd *cobra.Command, data []collections.Pair[string, any]) error {
	maxKeyLength := 0
	for _, pair := range data {
		if len(pair.Left) > maxKeyLength {
			maxKeyLength = len(pair.Left)
		}
	}

	for _, pair := range data {
		if fmt.Sprintf("%v", pair.Right) == "" {
			continue
		}
		cmd.Printf("%-*s = %v\n", maxKeyLength, pair.Left, pair.Right)
	}
	return nil
}

func outputTable[T any](cmd *cobra.Command, columns []TableColumn[T], options OutputOptions, items []T) {
	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	if options.SortBy != nil {
		tw.SortBy(options.SortBy)
	}

	configs := lo.Map(columns, func(c TableColumn[T], i int) table.ColumnConfig {
		config := c.ColumnConfig
		config.Number = i + 1
		if options.Wide {
			config.WidthMax = 0
			config.WidthMaxEnforcer = nil
		}
		return config
	})
	tw.SetColumnConfigs(configs)

	if !options.HideHeader {
		headers := lo.Map(columns, func(c TableColumn[T], _ int) any { return c.Name })
		tw.AppendHeader(headers)
	}

	tw.SetStyle(table.StyleColoredGreenWhiteOnBlack)
	if options.NoStyle {
		tw.SetStyle(noStyle)
	}

	for _, item := range items {
		values := lo.Map(columns, func(c TableColumn[T], _ int) any {
			return c.Value(item)
		})
		tw.AppendRow(values)
	}

	switch options.Format {
	case TableFormat:
		tw.Render()
	case CSVFormat:
		tw.RenderCSV()
	}
}
