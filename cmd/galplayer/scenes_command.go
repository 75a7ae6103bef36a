package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/cbodonnell/galplayer/pkg/scenes"
	"github.com/spf13/cobra"
)

func newScenesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes [story]",
		Short: "List the scenes of a story",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			story, err := ctx.loadStory(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderScenes(story))
			return nil
		},
	}
}

func renderScenes(store narrative.Store) string {
	headers := []string{"Scene", "Type", "Lines", "Assets", "Next", "Start"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}

	var rows [][]string
	for _, scene := range store.Scenes() {
		rows = append(rows, []string{
			scene.ID,
			string(scene.Type),
			strconv.Itoa(len(scene.Contents)),
			strconv.Itoa(len(scenes.Manifest(scene))),
			nextScenes(scene),
			yesNo(scene.ID == store.Initial()),
		})
	}
	return renderTable(headers, rows, aligns)
}

func nextScenes(scene *narrative.Scene) string {
	if len(scene.Choices) == 0 {
		return scene.NextScene
	}
	targets := make([]string, 0, len(scene.Choices))
	for _, c := range scene.Choices {
		targets = append(targets, c.NextScene)
	}
	return strings.Join(targets, ", ")
}
