package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfxdev/go-transmission"
)

func newTorrentCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newListCommand(ctx),
		newStartCommand(ctx),
		newStopCommand(ctx),
		newAddCommand(ctx),
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List torrents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(callCtx context.Context, client *transmission.Client) error {
				torrents, err := client.LoadTorrents(callCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(torrents) == 0 {
					fmt.Fprintln(out, "No torrents")
					return nil
				}

				headers := []string{"ID", "Name", "Status", "Done", "Size", "Down", "Up", "ETA", "Stalled"}
				aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
				rows := make([][]string, 0, len(torrents))
				for _, t := range torrents {
					rows = append(rows, []string{
						strconv.Itoa(t.ID),
						t.Name,
						t.Status.String(),
						formatPercent(t.PercentDone),
						formatBytes(t.SizeWhenDone),
						formatRate(t.RateDownload),
						formatRate(t.RateUpload),
						formatETA(t.ETA),
						yesNo(t.IsStalled),
					})
				}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}
}

func newStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start [id...]",
		Short: "Start torrents (all when no id is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(callCtx context.Context, client *transmission.Client) error {
				if err := client.Start(callCtx, ids...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started %s\n", describeIDs(ids))
				return nil
			})
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [id...]",
		Short: "Stop torrents (all when no id is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(callCtx context.Context, client *transmission.Client) error {
				if err := client.Stop(callCtx, ids...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stopped %s\n", describeIDs(ids))
				return nil
			})
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var downloadDir string
	var paused bool

	cmd := &cobra.Command{
		Use:   "add <magnet|url|file.torrent>",
		Short: "Add a torrent from a magnet link, a URL or a local .torrent file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := addOptions(args[0])
			if err != nil {
				return err
			}
			opts.DownloadDir = strings.TrimSpace(downloadDir)
			opts.Paused = paused

			return ctx.withClient(cmd, func(callCtx context.Context, client *transmission.Client) error {
				added, err := client.AddTorrent(callCtx, opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if added.Duplicate {
					fmt.Fprintf(out, "Already present: #%d %s\n", added.ID, added.Name)
					return nil
				}
				fmt.Fprintf(out, "Added #%d %s\n", added.ID, added.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&downloadDir, "download-dir", "d", "", "Directory to download into (daemon default when empty)")
	cmd.Flags().BoolVar(&paused, "paused", false, "Add without starting")
	return cmd
}

// addOptions treats anything that looks like a link as a URL and everything
// else as a path to a .torrent file, which is sent base64 encoded.
func addOptions(source string) (transmission.AddTorrentOptions, error) {
	source = strings.TrimSpace(source)
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "magnet:") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return transmission.AddTorrentOptions{URL: source}, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return transmission.AddTorrentOptions{}, fmt.Errorf("read torrent file: %w", err)
	}
	return transmission.AddTorrentOptions{Data: base64.StdEncoding.EncodeToString(data)}, nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid torrent id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func describeIDs(ids []int) string {
	if len(ids) == 0 {
		return "all torrents"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "#" + strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
