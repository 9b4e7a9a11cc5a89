package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pycramdb/action"
	"pycramdb/store"
)

func newInsertCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "insert -f <file>",
		Short: "Record actions from a JSON file",
		Long:  "Record one action (a JSON object) or several (a JSON array) from a file, or from stdin with -f -.\nReferences are either ids of stored value objects or the value objects themselves.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			a.enableEvents(db)
			return insertActions(cmd.Context(), db, data, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file to read, - for stdin")
	cmd.MarkFlagRequired("file")
	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(file)
}

func insertActions(ctx context.Context, db *store.DB, data []byte, out io.Writer) error {
	var docs []json.RawMessage
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return fmt.Errorf("decode actions: %w", err)
		}
	} else {
		docs = []json.RawMessage{data}
	}
	for i, doc := range docs {
		act, err := action.UnmarshalJSON(db.Registry(), doc)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		id, err := db.InsertAction(ctx, act)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		fmt.Fprintf(out, "%s %d\n", act.Kind(), id)
	}
	return nil
}

func newLoadCmd(a *app) *cobra.Command {
	var resolve bool
	cmd := &cobra.Command{
		Use:   "load <id>",
		Short: "Print a stored action as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("load: invalid id %q: %w", args[0], err)
			}
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			act, err := db.LoadAction(cmd.Context(), id)
			if err != nil {
				return err
			}
			data, err := action.MarshalJSON(act)
			if err != nil {
				return err
			}
			if !resolve {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			values, err := resolveValues(cmd.Context(), db, act)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"action": json.RawMessage(data), "values": values})
		},
	}
	cmd.Flags().BoolVar(&resolve, "resolve", false, "also print the referenced value objects")
	return cmd
}

// resolveValues fetches every value object act references, keyed by field.
func resolveValues(ctx context.Context, db *store.DB, act action.Action) (map[string]any, error) {
	v, err := db.Registry().Lookup(act.Kind())
	if err != nil {
		return nil, err
	}
	rec, err := v.Encode(act)
	if err != nil {
		return nil, err
	}
	r := db.Resolver()
	rs, err := r.FetchRobotState(ctx, act.Header().RobotState)
	if err != nil {
		return nil, err
	}
	out := map[string]any{"robot_state": rs}
	for _, f := range v.Fields {
		if f.Type != action.FieldRef {
			continue
		}
		ref, ok := rec[f.Name].(action.Reference)
		if !ok || ref.RefID() == 0 {
			continue
		}
		val, err := r.Fetch(ctx, f.Target, ref.RefID())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		out[f.Name] = val
	}
	return out, nil
}

func newListCmd(a *app) *cobra.Command {
	var kind string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded actions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			actions, err := db.ListActions(cmd.Context(), action.Kind(kind), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tROBOT STATE\tCREATED")
			for _, s := range actions {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", s.ID, s.Kind, s.RobotStateID, s.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only list actions of this kind")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of actions, 0 for all")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id> [id...]",
		Short: "Delete actions by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			a.enableEvents(db)
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("delete: invalid id %q: %w", arg, err)
				}
				if err := db.DeleteAction(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted action %d\n", id)
			}
			return nil
		},
	}
}
