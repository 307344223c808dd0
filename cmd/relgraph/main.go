package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relgraph/relgraph"
	"github.com/relgraph/relgraph/internal/formatter"
)

var (
	dbURL      string
	schemaName string
	modelFile  string
	format     string
	verbose    bool

	sampleCap int
	tableName string
	refTable  string
	otherName string
	refHint   string
	pkMode    bool
)

var rootCmd = &cobra.Command{
	Use:   "relgraph",
	Short: "Inspect and validate relational key graphs",
	Long: `relgraph builds a relational data model from a live database (PostgreSQL,
MySQL, or SQLite) or a YAML definition, then validates primary/foreign key
integrity, recommends key candidates, and plans filter propagation across
the key graph.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the key graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closer, err := buildModel(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		switch format {
		case "text":
			return formatter.NewTextFormatter(os.Stdout).FormatGraph(m.Graph())
		case "markdown":
			return formatter.NewMarkdownFormatter(os.Stdout).FormatGraph(m.Graph())
		default:
			return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", format)
		}
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check PK uniqueness and FK containment for every declared key",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closer, err := buildModel(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		results, err := m.CheckAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to run checks: %w", err)
		}

		switch format {
		case "text":
			if err := formatter.NewTextFormatter(os.Stdout).FormatResults(results); err != nil {
				return err
			}
		case "markdown":
			if err := formatter.NewMarkdownFormatter(os.Stdout).FormatResults(results); err != nil {
				return err
			}
		default:
			return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", format)
		}

		for _, res := range results {
			if !res.OK() {
				os.Exit(1)
			}
		}
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank a table's columns as key candidates",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tableName == "" {
			return fmt.Errorf("--table is required")
		}
		if !pkMode && refTable == "" {
			return fmt.Errorf("--ref is required (or use --pk for primary key candidates)")
		}

		m, closer, err := buildModel(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		var candidates []relgraph.Candidate
		if pkMode {
			candidates, err = m.RecommendPK(cmd.Context(), tableName)
		} else {
			candidates, err = m.RecommendFK(cmd.Context(), tableName, refTable)
		}
		if err != nil {
			return fmt.Errorf("failed to score candidates: %w", err)
		}
		return formatter.NewTextFormatter(os.Stdout).FormatCandidates(tableName, candidates)
	},
}

var propagateCmd = &cobra.Command{
	Use:   "propagate",
	Short: "Plan how a filter on one table restricts the rest of the graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tableName == "" {
			return fmt.Errorf("--table is required")
		}

		m, closer, err := buildModel(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		restrictions, err := m.Propagate(tableName)
		if err != nil {
			return fmt.Errorf("failed to propagate: %w", err)
		}
		return formatter.NewTextFormatter(os.Stdout).FormatPropagation(m.Graph(), tableName, restrictions)
	},
}

var directionCmd = &cobra.Command{
	Use:   "direction",
	Short: "Resolve the parent/child direction between two tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tableName == "" || otherName == "" {
			return fmt.Errorf("--table and --other are required")
		}

		m, closer, err := buildModel(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		dir, err := m.ResolveDirection(tableName, otherName, refHint)
		if err != nil {
			return err
		}
		fmt.Printf("%s.%s -> %s\n", dir.Referencing, dir.ReferencingColumn, dir.Referenced)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "Database URL (postgres://, mysql://, or sqlite://; default $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVarP(&schemaName, "schema", "s", "", "Database schema name (PostgreSQL/MySQL)")
	rootCmd.PersistentFlags().StringVarP(&modelFile, "model", "m", "", "YAML model definition file (alternative to --db-url)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "Output format: text or markdown")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable diagnostic logging")

	checkCmd.Flags().IntVar(&sampleCap, "samples", 0, "Max example values per failed check")

	recommendCmd.Flags().StringVarP(&tableName, "table", "t", "", "Table whose columns to score")
	recommendCmd.Flags().StringVarP(&refTable, "ref", "r", "", "Reference table with a primary key")
	recommendCmd.Flags().BoolVar(&pkMode, "pk", false, "Score primary key candidates instead of foreign key candidates")

	propagateCmd.Flags().StringVarP(&tableName, "table", "t", "", "Filtered table to propagate from")

	directionCmd.Flags().StringVarP(&tableName, "table", "t", "", "First table")
	directionCmd.Flags().StringVar(&otherName, "other", "", "Second table")
	directionCmd.Flags().StringVar(&refHint, "referencing", "", "Referencing side when foreign keys run both ways")

	rootCmd.AddCommand(showCmd, checkCmd, recommendCmd, propagateCmd, directionCmd)
}

// buildModel constructs the model from --model or --db-url, in that order of
// preference. The returned closer releases any database connection.
func buildModel(ctx context.Context) (*relgraph.Model, func() error, error) {
	opts := &relgraph.Options{SampleCap: sampleCap}
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, nil, err
		}
		opts.Logger = logger
	}

	if modelFile != "" {
		m, err := loadDefinition(modelFile, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load model definition: %w", err)
		}
		return m, func() error { return nil }, nil
	}

	url := dbURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, nil, fmt.Errorf("one of --model, --db-url, or $DATABASE_URL must be specified")
	}

	m, closer, err := relgraph.FromDatabase(ctx, url, &relgraph.ConnectOptions{
		SchemaName: schemaName,
		Options:    opts,
	})
	if err != nil {
		return nil, nil, err
	}
	return m, closer, nil
}

func main() {
	// A .env next to the binary may carry DATABASE_URL; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
