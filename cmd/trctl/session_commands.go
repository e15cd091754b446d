package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jfxdev/go-transmission"
)

func newSessionCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newStatsCommand(ctx),
		newDownloadDirCommand(ctx),
		newSessionIDCommand(ctx),
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show daemon transfer statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(callCtx context.Context, client *transmission.Client) error {
				stats, err := client.LoadStats(callCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Torrents: %d (%d active, %d paused)\n", stats.TorrentCount, stats.ActiveTorrentCount, stats.PausedTorrentCount)
				fmt.Fprintf(out, "Speed: %s down, %s up\n", formatRate(stats.DownloadSpeed), formatRate(stats.UploadSpeed))

				headers := []string{"Period", "Downloaded", "Uploaded", "Files", "Active"}
				aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}
				rows := [][]string{
					totalsRow("current", stats.CurrentStats),
					totalsRow("cumulative", stats.CumulativeStats),
				}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}
}

func totalsRow(label string, totals transmission.TransferTotals) []string {
	return []string{
		label,
		formatBytes(totals.DownloadedBytes),
		formatBytes(totals.UploadedBytes),
		strconv.FormatInt(totals.FilesAdded, 10),
		formatDuration(totals.SecondsActive),
	}
}

func newDownloadDirCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download-dir",
		Short: "Print the daemon's default download directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(callCtx context.Context, client *transmission.Client) error {
				dir, err := client.GetDefaultDownloadDir(callCtx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			})
		},
	}
}

func newSessionIDCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "session-id",
		Short: "Ask the daemon for its current session id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(callCtx context.Context, client *transmission.Client) error {
				id, err := client.GetNewSessionID(callCtx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}
