// Shared helpers for craftcompass CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/pkg/types"
)

// usageError is a malformed command line detected inside a command body.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// parseID parses a positive numeric ID argument.
func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErrorf("invalid %s ID %q", what, s)
	}
	return id, nil
}

func parseAmount(what, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, usageErrorf("invalid %s %q", what, s)
	}
	return v, nil
}

// changed returns v when the flag was set on the command line and nil
// otherwise, for building partial updates.
func changed[T any](cmd *cobra.Command, flag string, v *T) *T {
	if cmd.Flags().Changed(flag) {
		return v
	}
	return nil
}

// emit writes v as indented JSON in --json mode, otherwise calls human.
func (a *app) emit(cmd *cobra.Command, v any, human func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if a.flags.jsonMode {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human(w)
	return nil
}

// table writes rows as aligned columns under header.
func table(w io.Writer, header string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func tagNames(tags []*types.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return orDash(strings.Join(names, ", "))
}

// resolveTag returns the ID of the tag called name. With create set, a
// missing tag is created.
func resolveTag(tx types.Store, name string, create bool) (int64, error) {
	name = strings.TrimSpace(name)
	tag, err := tx.Tags().GetByName(name)
	if err == nil {
		return tag.ID, nil
	}
	if !create || !errors.Is(err, types.ErrNotFound) {
		return 0, err
	}
	return tx.Tags().Create(&types.Tag{Name: name})
}
