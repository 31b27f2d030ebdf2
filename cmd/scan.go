package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lu-zero/ndplus/pkg/lang"
	"github.com/lu-zero/ndplus/pkg/parser"
	"github.com/lu-zero/ndplus/pkg/symbols"
	"github.com/lu-zero/ndplus/pkg/topic"
)

var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "Parse every recognized source file under a directory",
	Long: `Walk a directory tree, parse every file whose extension belongs to a
registered language, and build the global symbol table and class
hierarchy. Prints a per-file topic count and the resolved hierarchy.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir := "."
		if len(args) > 0 {
			rootDir = args[0]
		}

		config, err := loadProjectConfig(rootDir)
		if err != nil {
			return err
		}
		if err := config.registerKeywords(); err != nil {
			return err
		}

		table := symbols.NewTable()
		p := parser.New(config.options(), table)

		files := 0
		topics := 0
		undocumented := 0
		err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if config.ignored(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if config.ignored(path) {
				return nil
			}
			ext := strings.TrimPrefix(filepath.Ext(path), ".")
			if _, ok := lang.ByExtension(ext); !ok || ext == "" {
				return nil
			}
			ctx, err := p.ParseFile(path)
			if err != nil {
				// a single unreadable file never aborts the run
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				return nil
			}
			files++
			topics += len(ctx.Topics)
			bare := 0
			for _, t := range ctx.Topics {
				if t.IsAuto && t.Type != topic.TypeGroup {
					bare++
				}
			}
			undocumented += bare
			fmt.Printf("%-50s %4d topics, %d undocumented\n", path, len(ctx.Topics), bare)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", rootDir, err)
		}

		table.ResolveHierarchy()
		fmt.Printf("\n%d files, %d topics (%d undocumented), %d classes\n",
			files, topics, undocumented, len(table.Classes()))

		showHierarchy, _ := cmd.Flags().GetBool("hierarchy")
		if showHierarchy {
			for _, symbol := range table.Classes() {
				node, err := table.Class(symbol)
				if err != nil {
					continue
				}
				fmt.Printf("%s\n", symbol)
				for _, parent := range node.Parents {
					fmt.Printf("  ^ %s\n", parent)
				}
				for _, child := range node.Children {
					fmt.Printf("  v %s\n", child)
				}
			}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().Bool("hierarchy", false, "Print the resolved class hierarchy")
}
