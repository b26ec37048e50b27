package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/vbsym/internal/config"
	"github.com/standardbeagle/vbsym/internal/debug"
	"github.com/standardbeagle/vbsym/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

var jsonFlag = &cli.BoolFlag{
	Name:    "json",
	Aliases: []string{"j"},
	Usage:   "Output as JSON",
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "vbsym",
		Usage:                  "Symbol tables and editor queries for Visual Basic 6 sources",
		Version:                version.Info(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: .vbsym.kdl or .vbsym.toml in the project root)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logging to stderr",
			},
			&cli.BoolFlag{
				Name:  "debug-log",
				Usage: "Write debug logging to a file under the temp directory",
			},
			&cli.StringFlag{
				Name:  "tree",
				Usage: "Tree dump for the source file (default: FILE plus the configured tree suffix)",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			if c.Bool("debug-log") {
				debug.EnableDebug = "true"
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.ErrWriter, "debug log: %s\n", path)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:      "outline",
				Usage:     "List the declarations of a file",
				ArgsUsage: "FILE",
				Flags:     []cli.Flag{jsonFlag},
				Action:    outlineCommand,
			},
			{
				Name:      "hover",
				Usage:     "Describe the symbol at a position",
				ArgsUsage: "FILE LINE COL",
				Flags:     []cli.Flag{jsonFlag},
				Action:    hoverCommand,
			},
			{
				Name:      "definition",
				Aliases:   []string{"def"},
				Usage:     "Locate the declaration of the symbol at a position",
				ArgsUsage: "FILE LINE COL",
				Flags:     []cli.Flag{jsonFlag},
				Action:    definitionCommand,
			},
			{
				Name:      "references",
				Aliases:   []string{"refs"},
				Usage:     "List every occurrence of the symbol at a position",
				ArgsUsage: "FILE LINE COL",
				Flags: []cli.Flag{
					jsonFlag,
					&cli.BoolFlag{
						Name:  "no-declaration",
						Usage: "Omit the declaration itself",
					},
				},
				Action: referencesCommand,
			},
			{
				Name:      "complete",
				Usage:     "Completion candidates at a position",
				ArgsUsage: "FILE LINE COL",
				Flags:     []cli.Flag{jsonFlag},
				Action:    completeCommand,
			},
			{
				Name:      "rename",
				Usage:     "Print the edits renaming the symbol at a position",
				ArgsUsage: "FILE LINE COL NEWNAME",
				Flags:     []cli.Flag{jsonFlag},
				Action:    renameCommand,
			},
			{
				Name:      "lookup",
				Usage:     "Resolve a module-level name and show its declaration",
				ArgsUsage: "FILE NAME",
				Flags:     []cli.Flag{jsonFlag},
				Action:    lookupCommand,
			},
			{
				Name:      "index",
				Usage:     "Build the symbol table of every matching file below a directory",
				ArgsUsage: "DIR",
				Flags:     []cli.Flag{jsonFlag},
				Action:    indexCommand,
			},
			{
				Name:      "symbols",
				Usage:     "Search module-level symbols across a directory",
				ArgsUsage: "DIR QUERY",
				Flags:     []cli.Flag{jsonFlag},
				Action:    symbolsCommand,
			},
			{
				Name:      "watch",
				Usage:     "Rebuild symbol tables as files change, until interrupted",
				ArgsUsage: "DIR",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:   "timeout",
						Usage:  "Stop after this long",
						Hidden: true,
					},
				},
				Action: watchCommand,
			},
			{
				Name:      "dump-go",
				Usage:     "Print the tree dump of a Go file parsed with tree-sitter",
				ArgsUsage: "FILE",
				Action:    dumpGoCommand,
			},
			{
				Name:   "version",
				Usage:  "Show version and build information",
				Action: versionCommand,
			},
		},
	}
}

// loadConfig resolves the configuration for root, honoring --config.
func loadConfig(c *cli.Context, root string) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.LoadWithRoot(configPath, root)
	if err != nil {
		if configPath == "" {
			configPath = filepath.Join(root, config.KDLFileName)
		}
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	return cfg, nil
}

func versionCommand(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, version.FullInfo())
	fmt.Fprintf(c.App.Writer, "build %s\n", version.BuildID())
	return nil
}
