package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cbodonnell/galplayer/pkg/repositories"
	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/spf13/cobra"
)

func newSavesCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var story string

	cmd := &cobra.Command{
		Use:   "saves",
		Short: "List recorded progress, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			repository, err := repositories.Open(cmd.Context(), cfg.Saves.Driver, cfg.Saves.DSN)
			if err != nil {
				return fmt.Errorf("open saves: %w", err)
			}
			defer repository.Close(cmd.Context())

			saves, err := repository.ListSaves(cmd.Context(), story, limit)
			if err != nil {
				return fmt.Errorf("list saves: %w", err)
			}
			renderSaves(cmd.OutOrStdout(), saves)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of saves to list (0 for all)")
	cmd.Flags().StringVar(&story, "story", "", "Only list saves of this story")
	return cmd
}

func renderSaves(w io.Writer, saves []*models.Save) {
	if len(saves) == 0 {
		fmt.Fprintln(w, "No saves")
		return
	}
	headers := []string{"Session", "Story", "Scene", "Line", "Started", "Updated"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
	rows := make([][]string, 0, len(saves))
	for _, s := range saves {
		rows = append(rows, []string{
			s.SessionID.String(),
			s.Story,
			s.SceneID,
			strconv.Itoa(s.Index),
			formatUnixMilli(s.CreatedAt),
			formatUnixMilli(s.UpdatedAt),
		})
	}
	fmt.Fprintln(w, renderTable(headers, rows, aligns))
}

func formatUnixMilli(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.UnixMilli(ts).Local().Format("2006-01-02 15:04")
}
