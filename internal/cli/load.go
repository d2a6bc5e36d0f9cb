package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/recordselect/internal/activerecord"
	"github.com/roach88/recordselect/internal/ir"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	DB        string
	Schemas   string
	Keys      string // "uuid" | "sequence"
	KeyPrefix string
}

// LoadResult is the load command's JSON payload.
type LoadResult struct {
	Type    string `json:"type"`
	Written int    `json:"written"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <type> <file.yaml|file.json>",
		Short: "Load records of one type into the store",
		Long: `Validate records against their declared type and write them in one batch.

The file holds a list of records (YAML or JSON). Records without a value
for a string key field get a generated key. Nothing is written unless
every record is valid.

Examples:
  recsel load --db blog.db --schemas ./schemas Post posts.yaml
  recsel load --backend pebble --db ./blog.kv --schemas ./schemas Author authors.json
  recsel load --keys sequence --key-prefix note Note notes.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (default from config)")
	cmd.Flags().StringVar(&opts.Schemas, "schemas", "", "schemas directory (default from config)")
	cmd.Flags().StringVar(&opts.Keys, "keys", "uuid", "key generator for keyless records (uuid|sequence)")
	cmd.Flags().StringVar(&opts.KeyPrefix, "key-prefix", "", "prefix for sequence keys (default: lowercased type name)")

	return cmd
}

func runLoad(opts *LoadOptions, typeName, file string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	set, err := LoadSchemas(opts.schemasDir(opts.Schemas))
	if err != nil {
		return failLoad(formatter, err)
	}
	rt, ok := set.Registry.Lookup(typeName)
	if !ok {
		return formatter.Fail(ExitCommandError, string(activerecord.ErrCodeUnknownType),
			fmt.Sprintf("record type %q is not declared (known: %s)", typeName, strings.Join(set.Registry.Names(), ", ")))
	}

	objs, err := readRecords(file)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadInput, err.Error())
	}

	gen, err := keyGenerator(opts.Keys, opts.KeyPrefix, rt.Name)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadInput, err.Error())
	}

	st, err := openStore(opts.Backend, opts.dbPath(opts.DB), opts.Logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.Logger.Error("error closing store", "error", closeErr)
		}
	}()

	n, err := activerecord.Load(cmd.Context(), st, rt, objs, gen)
	if err != nil {
		var loadErr *activerecord.LoadError
		if errors.As(err, &loadErr) {
			return outputValidationErrors(formatter, loadErr.Errors)
		}
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error())
	}
	opts.Logger.Info("records loaded", "type", rt.Name, "rows", n)

	if formatter.Format == "json" {
		return formatter.Success(LoadResult{Type: rt.Name, Written: n})
	}
	fmt.Fprintf(formatter.Writer, "✓ Loaded %d %s record(s)\n", n, rt.Name)
	return nil
}

func failLoad(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message)
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
}

// readRecords decodes a YAML or JSON list of records.
// JSON is decoded by the YAML parser, which accepts it as a subset.
func readRecords(path string) ([]ir.IRObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	var raw []map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse %s: must be a list of records: %w", path, err)
	}

	objs := make([]ir.IRObject, len(raw))
	for i, rec := range raw {
		obj, err := ir.ObjectFromMap(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		objs[i] = obj
	}
	return objs, nil
}

func keyGenerator(kind, prefix, typeName string) (activerecord.KeyGenerator, error) {
	switch kind {
	case "uuid", "":
		return activerecord.UUIDv7Generator{}, nil
	case "sequence":
		if prefix == "" {
			prefix = strings.ToLower(typeName)
		}
		return activerecord.NewSequenceGenerator(prefix), nil
	default:
		return nil, fmt.Errorf("unknown key generator %q: must be uuid or sequence", kind)
	}
}
