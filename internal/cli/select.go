package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/recordselect/internal/activerecord"
	"github.com/roach88/recordselect/internal/queryir"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	DB      string
	Schemas string
	Where   string // JSON list of condition objects
	Order   string // JSON object of field -> direction, key order significant
	Limit   int
	First   bool
	Last    bool
	Lenient bool
}

// SelectResult is the select command's JSON payload.
type SelectResult struct {
	Type    string                 `json:"type"`
	Count   int                    `json:"count"`
	Records []*activerecord.Record `json:"records"`
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <type>",
		Short: "Query records with a filtered, ordered, limited select",
		Long: `Build a select against a declared record type and print the result.

--where takes a JSON list of conditions:
  [{"field":"status","op":"=","value":"published"},
   {"field":"author","op":"is-null","conjunction":"or"}]

--order takes a JSON object; earlier keys sort first:
  {"created_at":"desc","id":"asc"}

Exit codes:
  0 - Query succeeded (an empty result is still a success)
  1 - --first/--last found no record
  2 - Command error (bad flags, unknown type, store failure)

Examples:
  recsel select --db blog.db --schemas ./schemas Post --order '{"created_at":"desc"}' --limit 10
  recsel select Post --where '[{"field":"title","op":"like","value":"%go%"}]' --first`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (default from config)")
	cmd.Flags().StringVar(&opts.Schemas, "schemas", "", "schemas directory (default from config)")
	cmd.Flags().StringVar(&opts.Where, "where", "", "conditions as a JSON list")
	cmd.Flags().StringVar(&opts.Order, "order", "", "ordering as a JSON object")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of records (0 = no limit)")
	cmd.Flags().BoolVar(&opts.First, "first", false, "return only the first record")
	cmd.Flags().BoolVar(&opts.Last, "last", false, "return only the last record")
	cmd.Flags().BoolVar(&opts.Lenient, "lenient-order", false, "treat unknown order directions as ascending")
	cmd.MarkFlagsMutuallyExclusive("first", "last")

	return cmd
}

func runSelect(opts *SelectOptions, typeName string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	where, err := parseWhereFlag(opts.Where)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadInput, err.Error())
	}
	var order queryir.OrderMap
	if opts.Order != "" {
		if err := json.Unmarshal([]byte(opts.Order), &order); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeBadInput, fmt.Sprintf("--order: %v", err))
		}
	}

	set, err := LoadSchemas(opts.schemasDir(opts.Schemas))
	if err != nil {
		return failLoad(formatter, err)
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

	mode := queryir.OrderStrict
	if opts.Lenient {
		mode = queryir.OrderLenient
	}
	q, err := activerecord.NewSelect(typeName, set.Registry, st,
		activerecord.WithStrict(opts.Strict),
		activerecord.WithOrderMode(mode),
		activerecord.WithLogger(opts.Logger))
	if err != nil {
		return formatter.QueryFail(err)
	}
	if len(where) > 0 {
		if _, err := q.Where(where); err != nil {
			return formatter.QueryFail(err)
		}
	}
	if len(order) > 0 {
		if _, err := q.Order(order); err != nil {
			return formatter.QueryFail(err)
		}
	}
	if cmd.Flags().Changed("limit") {
		if _, err := q.Limit(opts.Limit); err != nil {
			return formatter.QueryFail(err)
		}
	}

	var records []*activerecord.Record
	switch {
	case opts.First, opts.Last:
		var rec *activerecord.Record
		if opts.First {
			rec, err = q.First(cmd.Context())
		} else {
			rec, err = q.Last(cmd.Context())
		}
		if err != nil {
			return formatter.QueryFail(err)
		}
		records = []*activerecord.Record{rec}
	default:
		records, err = q.All(cmd.Context())
		if err != nil {
			return formatter.QueryFail(err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(SelectResult{Type: typeName, Count: len(records), Records: records})
	}
	return outputRecordsText(formatter, records)
}

// parseWhereFlag decodes the --where JSON list. Numbers keep their
// integer or float form.
func parseWhereFlag(s string) ([]map[string]any, error) {
	if s == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var entries []map[string]any
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("--where must be a JSON list of conditions: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("--where must be a single JSON list; found trailing data at offset %d", dec.InputOffset())
	}
	return entries, nil
}

// outputRecordsText prints one record per line as Type(id) followed by
// its canonical JSON fields.
func outputRecordsText(formatter *OutputFormatter, records []*activerecord.Record) error {
	for _, rec := range records {
		data, err := rec.MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Fprintf(formatter.Writer, "%s %s\n", rec, data)
	}
	fmt.Fprintf(formatter.Writer, "(%d record(s))\n", len(records))
	return nil
}
