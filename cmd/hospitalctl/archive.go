package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hospitalcore/internal/blob"
	"hospitalcore/internal/core"
)

const defaultArchiveRoot = "snapshots"

func archiveCmd(a *app) *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Write the current state to the configured archive under a timestamped prefix",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := blob.Open(ctx, a.cfg.Blob())
			if err != nil {
				return err
			}
			prefix := core.ArchivePrefix(root, a.clock.Now())
			infos, err := a.svc.ArchiveSnapshot(ctx, store, prefix)
			if err != nil {
				return err
			}
			var size int64
			for _, info := range infos {
				size += info.Size
			}
			fmt.Fprintf(a.out, "archived %d buckets (%d bytes) to %s:%s\n", len(infos), size, store.Driver(), prefix)
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", defaultArchiveRoot, "key prefix under which archives are written")

	list := &cobra.Command{
		Use:   "list",
		Short: "List archived snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := blob.Open(ctx, a.cfg.Blob())
			if err != nil {
				return err
			}
			prefixes, err := a.svc.ListArchives(ctx, store, root)
			if err != nil {
				return err
			}
			for _, p := range prefixes {
				fmt.Fprintln(a.out, p)
			}
			return nil
		},
	}
	list.Flags().StringVar(&root, "root", defaultArchiveRoot, "key prefix to search")
	cmd.AddCommand(list)
	return cmd
}

func restoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore PREFIX",
		Short: "Replace the current state with an archived snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := blob.Open(ctx, a.cfg.Blob())
			if err != nil {
				return err
			}
			if err := a.svc.RestoreSnapshot(ctx, store, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "restored %s:%s\n", store.Driver(), args[0])
			return nil
		},
	}
}
