package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lu-zero/ndplus/pkg/parser"
	"github.com/lu-zero/ndplus/pkg/topic"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse one source file and output its documentation topics",
	Long: `Parse a source file, extract its documentation comments, reconcile them
with the declarations found in the code, and print the resulting topic
list. The output can be JSON for further processing or a human-readable
listing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		config, err := loadProjectConfig(filepath.Dir(filename))
		if err != nil {
			return err
		}
		if err := config.registerKeywords(); err != nil {
			return err
		}

		p := parser.New(config.options(), nil)
		ctx, err := p.ParseFile(filename)
		if err != nil {
			return fmt.Errorf("failed to parse file %s: %w", filename, err)
		}

		format, _ := cmd.Flags().GetString("format")
		showBodies, _ := cmd.Flags().GetBool("bodies")

		switch format {
		case "json":
			return outputJSON(ctx.Topics)
		default:
			return outputHuman(ctx.Topics, showBodies)
		}
	},
}

func init() {
	parseCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
	parseCmd.Flags().BoolP("bodies", "b", false, "Include formatted topic bodies in the listing")
}

// topicJSON is the serialized form of one topic.
type topicJSON struct {
	Type      string   `json:"type"`
	Title     string   `json:"title"`
	Symbol    string   `json:"symbol"`
	Package   string   `json:"package,omitempty"`
	Prototype string   `json:"prototype,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Body      string   `json:"body,omitempty"`
	Line      int      `json:"line"`
	IsList    bool     `json:"isList,omitempty"`
	IsAuto    bool     `json:"isAuto,omitempty"`
	Using     []string `json:"using,omitempty"`
}

func outputJSON(topics []*topic.Topic) error {
	out := make([]topicJSON, 0, len(topics))
	for _, t := range topics {
		out = append(out, topicJSON{
			Type:      t.Type.String(),
			Title:     t.Title,
			Symbol:    t.Symbol(),
			Package:   t.Package,
			Prototype: t.Prototype,
			Summary:   t.Summary(),
			Body:      t.Body,
			Line:      t.LineNumber,
			IsList:    t.IsList,
			IsAuto:    t.IsAuto,
			Using:     t.Using,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func outputHuman(topics []*topic.Topic, showBodies bool) error {
	for _, t := range topics {
		marker := " "
		if t.IsAuto {
			marker = "*"
		}
		fmt.Printf("%s %4d %-12s %s", marker, t.LineNumber, t.Type.String(), t.Symbol())
		if t.IsContinuation {
			fmt.Printf(" (continued)")
		}
		fmt.Println()
		if t.Prototype != "" {
			fmt.Printf("        %s\n", t.Prototype)
		}
		if showBodies && t.HasBody() {
			fmt.Printf("        %s\n", t.Body)
		} else if s := t.Summary(); s != "" && !t.NoSummary {
			fmt.Printf("        %s\n", s)
		}
	}
	return nil
}
