package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seqflow/seqflow/pkg/adapters"
	"github.com/seqflow/seqflow/pkg/config"
	"github.com/seqflow/seqflow/pkg/rules"
	"github.com/seqflow/seqflow/pkg/tui"
)

// rules flags
var (
	rulesInput    string
	rulesOutput   string
	topK          int
	rankBy        string
	dropMalformed bool
	printTable    bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Decompose and rank mined rules into an analyzable table",
	Long: `Read a mining engine's rule output (columns: rule, support, confidence,
lift), split each rule string into antecedent (LHS) and consequent (RHS), and
write the result as a table. Rows whose rule string lacks the " => " separator
keep the full string as LHS with an empty RHS; they are counted and reported,
not dropped, unless --drop-malformed is set.

The output format follows the file extension: .csv, .xlsx, or .parquet.

Examples:
  seqflow rules -i rules.csv -o rules_table.csv
  seqflow rules -i rules.csv -o top20.xlsx --top 20 --by lift
  seqflow rules -i rules.csv -o clean.parquet --drop-malformed`,
	RunE: runRules,
}

func init() {
	cfg := config.Global().Get()
	rulesCmd.Flags().StringVarP(&rulesInput, "input", "i", "", "Engine rule output CSV (required)")
	rulesCmd.Flags().StringVarP(&rulesOutput, "output", "o", "", "Output table path (required)")
	rulesCmd.Flags().IntVar(&topK, "top", cfg.Output.TopK, "Keep only the top K rules (0 = all)")
	rulesCmd.Flags().StringVar(&rankBy, "by", cfg.Output.RankBy, "Ranking metric (support, confidence, lift)")
	rulesCmd.Flags().BoolVar(&dropMalformed, "drop-malformed", false, "Drop rows without a parseable consequent")
	rulesCmd.Flags().BoolVar(&printTable, "print", false, "Print the resulting table to stdout")
	rulesCmd.MarkFlagRequired("input")
	rulesCmd.MarkFlagRequired("output")
}

func runRules(cmd *cobra.Command, args []string) error {
	mined, err := adapters.ReadRulesCSV(rulesInput)
	if err != nil {
		return err
	}

	table := rules.Decompose(mined)
	malformed := table.MalformedCount

	if dropMalformed {
		table = table.DropMalformed()
	}
	if topK > 0 {
		table = table.TopK(rules.ParseMetric(rankBy), topK)
	}

	if err := writeRuleTable(rulesOutput, table); err != nil {
		return err
	}

	if printTable {
		tui.PrintRuleTable(table, 0)
	}

	if verbose && malformed > 0 {
		fmt.Printf("  %d malformed rule(s) in input\n", malformed)
	}

	tui.PrintRunReport(&tui.RunReport{
		Records:    len(mined),
		Rules:      len(table.Rows),
		Malformed:  malformed,
		OutputPath: rulesOutput,
	})

	return nil
}

// writeRuleTable picks the sink by extension.
func writeRuleTable(path string, table rules.Table) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return adapters.WriteRulesXLSX(path, table)
	case ".parquet":
		return adapters.WriteRulesParquet(path, table)
	default:
		return adapters.WriteRulesCSV(path, table)
	}
}
