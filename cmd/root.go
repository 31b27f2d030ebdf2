package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/lu-zero/ndplus/pkg/parser"
	"github.com/lu-zero/ndplus/pkg/topic"
)

// Version information
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ndplus",
	Short: "A lightweight-markup documentation extractor for source code",
	Long: `ndplus parses source files, turns documentation comments written in a
lightweight markup convention into structured topics, reconciles them with
the declarations the code itself exposes (classes, functions, variables),
and assembles a cross-referenced symbol table and class hierarchy.`,
	Version: getVersionString(),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ndplus %s\n", getVersionString())
		fmt.Printf("  Version: %s\n", version)
		fmt.Printf("  Commit:  %s\n", commit)
		fmt.Printf("  Date:    %s\n", date)
	},
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return version
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(versionCmd)
}

// ProjectConfig represents the structure of a .ndplus.yaml configuration file
type ProjectConfig struct {
	DocumentedOnly bool              `yaml:"documentedOnly,omitempty"`
	NoAutoGroup    bool              `yaml:"noAutoGroup,omitempty"`
	Footer         string            `yaml:"footer,omitempty"`
	Locale         string            `yaml:"locale,omitempty"`
	Ignore         []string          `yaml:"ignore,omitempty"`
	Keywords       map[string]string `yaml:"keywords,omitempty"`
	PluralKeywords map[string]string `yaml:"pluralKeywords,omitempty"`
}

// loadProjectConfig loads .ndplus.yaml from the root directory. A missing
// file is not an error; defaults apply.
func loadProjectConfig(rootDir string) (*ProjectConfig, error) {
	path := filepath.Join(rootDir, ".ndplus.yaml")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var config ProjectConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &config, nil
}

// options converts the file configuration into parser options.
func (c *ProjectConfig) options() parser.Options {
	opts := parser.DefaultOptions()
	opts.DocumentedOnly = c.DocumentedOnly
	opts.AutoGroup = !c.NoAutoGroup
	opts.Footer = c.Footer
	if c.Locale != "" {
		opts.Locale = c.Locale
	}
	return opts
}

// registerKeywords installs config-defined comment keywords.
func (c *ProjectConfig) registerKeywords() error {
	for word, typeName := range c.Keywords {
		t, ok := topic.TypeFromName(typeName)
		if !ok {
			return fmt.Errorf("unknown topic type %q for keyword %q", typeName, word)
		}
		topic.AddKeyword(word, t, false)
	}
	for word, typeName := range c.PluralKeywords {
		t, ok := topic.TypeFromName(typeName)
		if !ok {
			return fmt.Errorf("unknown topic type %q for keyword %q", typeName, word)
		}
		topic.AddKeyword(word, t, true)
	}
	return nil
}

// ignored reports whether a path matches an ignore pattern.
func (c *ProjectConfig) ignored(path string) bool {
	for _, pattern := range c.Ignore {
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
