package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toyz/blanket/internal/cli"
	"github.com/toyz/blanket/internal/utils"
)

// app carries what every subcommand needs once flags and config are loaded
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configFile  string
	config      *cli.Config
	diagnostics *utils.DiagnosticSystem
}

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"attribute":       "attribute",
	"suffix":          "suffix",
	"crate":           "crate",
	"strict":          "strict",
	"copy-item-attrs": "copy_item_attrs",
	"move-defaults":   "move_defaults",
	"exclude":         "exclude",
	"verbose":         "verbose",
	"quiet":           "quiet",
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "blanket",
		Short: "Split annotated traits into a declaration and a blanket impl",
		Long: `blanket rewrites every trait annotated with
#[blanket_trait(impl<T: Bound> Trait for T)] into the trait declaration with
its default method bodies stripped, followed by a blanket impl carrying them.

Directory arguments support Go-style patterns:
  ./...              Scan the current directory and all subdirectories
  ./src/...          Scan src and all its subdirectories
  ./src/traits       Scan only the specific directory (no recursion)`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	defaults := cli.DefaultConfig()
	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Config file (default: ./blanket.yaml if present)")
	flags.String("attribute", defaults.Attribute, "Attribute that marks traits for expansion")
	flags.String("suffix", defaults.Suffix, "Suffix of generated files")
	flags.String("crate", "", "Crate name for generated banners (default: read from Cargo.toml)")
	flags.Bool("strict", false, "Treat an impl self type that is not a declared type parameter as an error")
	flags.Bool("copy-item-attrs", false, "Copy method attributes onto the impl as well")
	flags.Bool("move-defaults", false, "Move associated type and const defaults into the impl")
	flags.StringSlice("exclude", nil, "Glob patterns of paths to skip (repeatable)")
	flags.BoolP("verbose", "v", false, "Enable verbose output and detailed error reporting")
	flags.BoolP("quiet", "q", false, "Only show errors")

	cmd.AddCommand(
		newExpandCmd(a),
		newGenerateCmd(a),
		newCheckCmd(a),
		newCleanCmd(a),
		newWatchCmd(a),
	)
	return cmd
}

// load resolves the configuration from file, environment and flags
func (a *app) load(cmd *cobra.Command, args []string) error {
	v, err := cli.NewViper(a.configFile, ".")
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	config, err := cli.LoadConfig(v)
	if err != nil {
		return err
	}
	config.Directories = args

	a.config = config
	a.diagnostics = utils.NewDiagnosticSystem(config.DiagnosticLevel())
	a.diagnostics.SetOutput(a.stdout, a.stderr)
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag --%s: %w", flag, err)
			}
		}
	}
	return nil
}

// generator builds the CLI generator for the loaded config
func (a *app) generator() (*cli.Generator, error) {
	return cli.NewGenerator(a.config, a.diagnostics)
}

// fail reports err through the generator's reporter and marks it handled
func (a *app) fail(g *cli.Generator, err error) error {
	g.Reporter().ReportError(err)
	return errReported
}

func newExpandCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expand [FILE|-]",
		Short: "Print the expansion of one file to stdout",
		Long: `Expands every annotated trait in FILE and prints the rewritten source.
With no FILE, or when FILE is -, the source is read from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.generator()
			if err != nil {
				return err
			}

			name, source, err := readInput(a.stdin, args)
			if err != nil {
				return err
			}
			g.Reporter().AddSource(name, source)

			out, warnings, err := g.Expand(name, source)
			if err != nil {
				return a.fail(g, err)
			}
			for _, warning := range warnings {
				g.Reporter().ReportWarning(warning)
			}

			_, err = io.WriteString(a.stdout, out)
			return err
		},
	}
}

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [DIR...]",
		Short: "Write the expansion of every annotated file next to its source",
		Long: `Scans the directories for source files holding annotated traits and writes
<stem><suffix> (default: .expanded.rs) beside each one. Files that fail are
reported and the rest are still written.`,
		Example: `  blanket generate ./...
  blanket generate --exclude "src/vendor/**" ./src/...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.generator()
			if err != nil {
				return err
			}

			a.diagnostics.Header("Expanding annotated traits")
			if a.config.Verbose {
				a.diagnostics.Section("Configuration")
				a.diagnostics.Indent()
				a.diagnostics.List("Target directories: %s", strings.Join(a.config.Patterns(), ", "))
				a.diagnostics.List("Attribute: #[%s]", a.config.Attribute)
				a.diagnostics.List("Suffix: %s", a.config.Suffix)
				a.diagnostics.Unindent()
			}

			runErr := g.Run()
			g.ReportSuccess()
			if runErr != nil {
				return a.fail(g, runErr)
			}

			a.diagnostics.GenerationComplete()
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [DIR...]",
		Short: "Verify that generated files are up to date",
		Long: `Expands every annotated file in memory and compares the result with the
generated file on disk. Prints a diff for each stale file and exits 1 when any
file is stale, missing or orphaned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.generator()
			if err != nil {
				return err
			}

			result, checkErr := cli.NewChecker(g).Check()
			if result == nil {
				return a.fail(g, checkErr)
			}

			for _, path := range result.UpToDate {
				a.diagnostics.Verbose("%s is up to date", path)
			}
			for _, stale := range result.Stale {
				a.diagnostics.Error("%s is stale", stale.Path)
				fmt.Fprint(a.stdout, stale.Diff)
			}
			for _, path := range result.Missing {
				a.diagnostics.Error("%s is missing", path)
			}
			for _, path := range result.Orphaned {
				a.diagnostics.Error("%s has no annotated source", path)
			}

			if checkErr != nil {
				return a.fail(g, checkErr)
			}
			if !result.OK() {
				a.diagnostics.Info("Run `blanket generate` to update generated files")
				return errReported
			}

			a.diagnostics.Success("%d generated files are up to date", len(result.UpToDate))
			return nil
		},
	}
}

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [DIR...]",
		Short: "Delete generated files",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := cli.NewCleaner(a.config.Suffix).CleanGeneratedFiles(a.config.Patterns())
			for _, path := range removed {
				a.diagnostics.Verbose("Removed %s", path)
			}
			if err != nil {
				return err
			}

			a.diagnostics.Success("Removed %d generated files", len(removed))
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [DIR...]",
		Short: "Regenerate whenever a source file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.generator()
			if err != nil {
				return err
			}

			a.diagnostics.Header("Watching for changes (Ctrl+C to stop)")
			return cli.NewWatcher(g).Run(cmd.Context())
		},
	}
}

// readInput returns the display name and content of the expand input
func readInput(stdin io.Reader, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return "<stdin>", string(content), nil
	}

	reader := utils.NewFileReader()
	content, err := reader.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return filepath.Clean(args[0]), content, nil
}
