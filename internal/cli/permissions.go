package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bistro-hq/bistro/internal/permissions"
)

func newPermissionsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "List every permission identifier in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCatalog(cmd.OutOrStdout(), permissions.Registry, format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text or json")
	return cmd
}

type catalogEntry struct {
	Module      string   `json:"module"`
	Permissions []string `json:"permissions"`
}

func printCatalog(w io.Writer, modules []permissions.Module, format string) error {
	entries := make([]catalogEntry, 0, len(modules))
	for _, m := range modules {
		claims := permissions.Discover([]permissions.Module{m})
		if len(claims) == 0 {
			continue
		}
		entry := catalogEntry{Module: m.Name}
		for _, c := range claims {
			entry.Permissions = append(entry.Permissions, c.Value)
		}
		entries = append(entries, entry)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "text", "":
		for _, e := range entries {
			fmt.Fprintf(w, "%s\n", e.Module)
			for _, p := range e.Permissions {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
