package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfassina/quire/internal/kvstore"
	"github.com/pfassina/quire/internal/logging"
	"github.com/pfassina/quire/internal/recent"
	"github.com/pfassina/quire/internal/workspace"
)

var recentOutput string

func newRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Inspect or edit the recently opened files list",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recently opened files, newest first",
		Args:  cobra.NoArgs,
		RunE: withRegistry(func(cmd *cobra.Command, reg *recent.Registry, _ *workspace.Workspace) error {
			return printRecent(cmd.OutOrStdout(), reg.List(), recentOutput)
		}),
	}
	listCmd.Flags().StringVarP(&recentOutput, "output", "o", "text", "output format: text|json")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget all recently opened files",
		Args:  cobra.NoArgs,
		RunE: withRegistry(func(cmd *cobra.Command, reg *recent.Registry, _ *workspace.Workspace) error {
			n := reg.Len()
			reg.Clear()
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", n)
			return nil
		}),
	}

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop entries whose files no longer exist",
		Args:  cobra.NoArgs,
		RunE: withRegistry(func(cmd *cobra.Command, reg *recent.Registry, ws *workspace.Workspace) error {
			n, err := pruneRecent(reg, ws)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", n)
			return nil
		}),
	}

	cmd.AddCommand(listCmd, clearCmd, pruneCmd)
	return cmd
}

type registryFunc func(cmd *cobra.Command, reg *recent.Registry, ws *workspace.Workspace) error

// withRegistry opens the workspace state store and loads the registry
// before running fn.
func withRegistry(fn registryFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd, false)
		if err != nil {
			return err
		}
		log, closeLog := logging.New(cfg)
		defer closeLog()

		kv, err := kvstore.Open(cfg.StatePath())
		if err != nil {
			return fmt.Errorf("open state store: %w", err)
		}
		defer func() {
			if err := kv.Close(); err != nil {
				log.WithError(err).Warn("close state store")
			}
		}()

		reg := recent.New(kv, log.WithField("command", cmd.Name()))
		_ = reg.Load() // logged by the registry
		return fn(cmd, reg, workspace.New(cfg.Workspace))
	}
}

func pruneRecent(reg *recent.Registry, ws *workspace.Workspace) (int, error) {
	valid, err := ws.ValidPaths()
	if err != nil {
		return 0, fmt.Errorf("list workspace: %w", err)
	}
	return reg.RemoveInvalid(valid), nil
}

func printRecent(w io.Writer, entries []recent.Entry, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []recent.Entry{}
		}
		return enc.Encode(entries)
	case "text", "":
		if len(entries) == 0 {
			fmt.Fprintln(w, "no recent files")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, e := range entries {
			opened := time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04")
			fmt.Fprintf(tw, "%s\t%s\n", opened, e.Path)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
