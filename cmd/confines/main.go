package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/leodido/confines"
	"github.com/leodido/structcli"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag/v2"
)

// Build metadata injected via ldflags. When built without ldflags (e.g.,
// plain `go build`), these remain at their zero values and the version
// command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

// outputFormat selects how command results are rendered.
type outputFormat enumflag.Flag

const (
	formatText outputFormat = iota
	formatJSON
)

var outputFormatIDs = map[outputFormat][]string{
	formatText: {"text"},
	formatJSON: {"json"},
}

var output outputFormat = formatText

func main() {
	root := &cobra.Command{
		Use:   "confines",
		Short: "Provider capability confinement checks",
		Long: `confines evaluates provider confinement catalogs against the current host.

A catalog declares resource types, their optional features (each guarded by
confines: fact, file, binary, method, and global feature predicates), and
their providers. Use it to verify which providers are usable on a host and
which capabilities they support.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().VarP(
		enumflag.New(&output, "output", outputFormatIDs, enumflag.EnumCaseInsensitive),
		"output", "o", "output format; one of 'text' or 'json'")

	root.AddCommand(checkCmd())
	root.AddCommand(docsCmd())
	root.AddCommand(factsCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger returns the diagnostics logger. Evaluation details are logged
// at debug level and surface only with --verbose.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// CheckOptions defines flags for the check subcommand.
type CheckOptions struct {
	Catalog string `flag:"catalog" flagshort:"f" flagdescr:"Path to the catalog file" flagrequired:"true"`
	Verbose bool   `flag:"verbose" flagshort:"v" flagdescr:"Log confinement failure details"`
}

func (o *CheckOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

// checkResult is one row of the check report.
type checkResult struct {
	Type         string   `json:"type"`
	Provider     string   `json:"provider"`
	Suitable     bool     `json:"suitable"`
	Capabilities []string `json:"capabilities"`
}

func checkCmd() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a catalog against the current host",
		Long: `Evaluate every provider declared in the catalog against the current host.
Exits with code 0 if all providers are suitable, 1 if any is not.`,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			logger := newLogger(opts.Verbose)

			catalog, err := LoadCatalog(opts.Catalog)
			if err != nil {
				return err
			}
			types, err := catalog.Build(confines.DefaultEnv())
			if err != nil {
				return err
			}

			var results []checkResult
			unsuitable := 0
			for _, typ := range types {
				for _, name := range typ.Providers() {
					p, _ := typ.Provider(name)
					suitable := p.Suitable()
					if !suitable {
						unsuitable++
						logger.Debug().
							Str("type", typ.Name()).
							Str("provider", name).
							Interface("summary", p.SuitabilitySummary()).
							Msg("provider not suitable")
					}
					results = append(results, checkResult{
						Type:         typ.Name(),
						Provider:     name,
						Suitable:     suitable,
						Capabilities: p.Capabilities(),
					})
				}
			}

			if output == formatJSON {
				if err := printJSON(results); err != nil {
					return err
				}
			} else {
				renderCheckTable(results)
			}

			if unsuitable > 0 {
				fmt.Fprintf(os.Stderr, "FAIL: %d provider(s) not suitable on this host\n", unsuitable)
				os.Exit(1)
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func renderCheckTable(results []checkResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"type", "provider", "suitable", "capabilities"})
	for _, r := range results {
		suitable := "no"
		if r.Suitable {
			suitable = "yes"
		}
		table.Append([]string{r.Type, r.Provider, suitable, strings.Join(r.Capabilities, ", ")})
	}
	table.Render()
}

// DocsOptions defines flags for the docs subcommand.
type DocsOptions struct {
	Catalog string `flag:"catalog" flagshort:"f" flagdescr:"Path to the catalog file" flagrequired:"true"`
}

func (o *DocsOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func docsCmd() *cobra.Command {
	opts := &DocsOptions{}

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Render feature documentation for a catalog",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			catalog, err := LoadCatalog(opts.Catalog)
			if err != nil {
				return err
			}
			types, err := catalog.Build(confines.DefaultEnv())
			if err != nil {
				return err
			}

			for i, typ := range types {
				if i > 0 {
					fmt.Println()
				}
				fmt.Printf("%s\n\n%s", typ.Name(), typ.FeatureDocumentation())
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func factsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facts",
		Short: "Display the host facts confines evaluate against",
		RunE: func(c *cobra.Command, args []string) error {
			facts := confines.HostFactValues()

			if output == formatJSON {
				return printJSON(facts)
			}

			names := make([]string, 0, len(facts))
			for name := range facts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s: %v\n", name, facts[name])
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool version",
		RunE: func(c *cobra.Command, args []string) error {
			if version != "" {
				fmt.Printf("confines %s", version)
				if commit != "" {
					fmt.Printf(" (%s)", commit)
				}
				if date != "" {
					fmt.Printf(" built %s", date)
				}
				fmt.Println()
			} else {
				fmt.Println("confines (dev)")
			}
			return nil
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
