package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lu-zero/ndplus/pkg/topic"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List the comment keywords and the topic types they map to",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadProjectConfig(".")
		if err != nil {
			return err
		}
		if err := config.registerKeywords(); err != nil {
			return err
		}

		table := topic.Keywords()
		words := make([]string, 0, len(table))
		for w := range table {
			words = append(words, w)
		}
		sort.Strings(words)
		for _, w := range words {
			fmt.Printf("%-14s %s\n", w, table[w].String())
		}
		return nil
	},
}
