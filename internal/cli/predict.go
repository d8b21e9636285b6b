package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"disease-predictor/internal/domain"
	"disease-predictor/internal/ml"
)

func predictCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON     bool
		recordPath string
	)

	c := &cobra.Command{
		Use:   "predict <domain> [field=value...]",
		Short: "Run one prediction",
		Long: `Run one prediction for a domain.

Fields are given as field=value pairs keyed by the domain's feature names;
absent fields count as 0. With --record, a JSON typed record is read from a
file ("-" for stdin) and range-checked before predicting.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.Parse(args[0])
			if err != nil {
				return err
			}

			s, err := flags.settings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(s)
			if err != nil {
				return err
			}
			defer closeStore()

			pipeline := newPipeline(s, store, nil)

			var res ml.Result
			if recordPath != "" {
				if len(args) > 1 {
					return fmt.Errorf("field=value pairs cannot be combined with --record")
				}
				rec, err := readRecord(id, recordPath, cmd.InOrStdin())
				if err != nil {
					return err
				}
				res, err = pipeline.PredictRecord(cmd.Context(), rec)
				if err != nil {
					return err
				}
			} else {
				raw, err := parseAssignments(args[1:])
				if err != nil {
					return err
				}
				res, err = pipeline.Predict(cmd.Context(), id, raw)
				if err != nil {
					return err
				}
			}

			return printResult(cmd.OutOrStdout(), res, asJSON)
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	c.Flags().StringVar(&recordPath, "record", "", "read a typed JSON record from a file (- for stdin)")
	return c
}

// parseAssignments turns field=value arguments into raw input. Values stay
// strings; the pipeline coerces them.
func parseAssignments(args []string) (domain.RawInput, error) {
	raw := make(domain.RawInput, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		if _, dup := raw[key]; dup {
			return nil, fmt.Errorf("field %q given twice", key)
		}
		raw[key] = value
	}
	return raw, nil
}

func readRecord(id domain.ID, path string, stdin io.Reader) (domain.Record, error) {
	rec, err := domain.NewRecord(id)
	if err != nil {
		return nil, err
	}

	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open record: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(rec); err != nil {
		return nil, &domain.Error{Op: "decode record", Kind: domain.KindMalformedInput, Domain: id, Err: err}
	}
	return rec, nil
}

func printResult(w io.Writer, res ml.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			ml.Result
			Label string `json:"label"`
		}{res, res.Label()})
	}

	name := string(res.Domain)
	if decl, ok := domain.Lookup(res.Domain); ok {
		name = decl.Name
	}
	_, err := fmt.Fprintf(w, "%s: %s\n  positive %.2f%%  negative %.2f%%\n",
		name, res.Label(), res.PositivePercent(), res.NegativePercent())
	return err
}
