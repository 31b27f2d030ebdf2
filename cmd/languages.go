package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lu-zero/ndplus/pkg/lang"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the supported languages and their file extensions",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := lang.Names()
		sort.Strings(names)
		for _, name := range names {
			l, ok := lang.ByName(name)
			if !ok {
				return fmt.Errorf("language %q vanished from the registry", name)
			}
			fmt.Printf("%-8s .%s\n", l.Name, strings.Join(l.Extensions, " ."))
		}
		return nil
	},
}
