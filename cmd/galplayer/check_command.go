package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/cbodonnell/galplayer/pkg/scenes"
	"github.com/spf13/cobra"
)

var errCheckFailed = errors.New("story check failed")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var skipAssets bool

	cmd := &cobra.Command{
		Use:   "check [story]",
		Short: "Validate a story and the assets it references",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			story, err := ctx.loadStory(args)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var checker assetChecker
			if !skipAssets {
				checker = assets.NewDirLoader(cfg.Assets.Root, assets.FileLoaderOptions{Dirs: cfg.Assets.Dirs})
			}
			return checkStory(cmd.OutOrStdout(), story, checker)
		},
	}
	cmd.Flags().BoolVar(&skipAssets, "skip-assets", false, "Only validate scene structure")
	return cmd
}

// assetChecker is satisfied by *assets.FileLoader.
type assetChecker interface {
	Exists(ref assets.Ref) bool
	Resolve(ref assets.Ref) string
}

func checkStory(w io.Writer, store narrative.Store, checker assetChecker) error {
	colorize := shouldColorize(w)
	failed := false
	if err := narrative.Validate(store); err != nil {
		failed = true
		fmt.Fprintln(w, colorizeStatus(err.Error(), ansiRed, colorize))
	}

	var rows [][]string
	if checker != nil {
		for _, ref := range scenes.StoryManifest(store) {
			if !checker.Exists(ref) {
				rows = append(rows, []string{ref.Kind.String(), ref.Path, checker.Resolve(ref)})
			}
		}
	}
	if len(rows) > 0 {
		failed = true
		fmt.Fprintln(w, colorizeStatus(fmt.Sprintf("%d missing assets:", len(rows)), ansiRed, colorize))
		fmt.Fprintln(w, renderTable([]string{"Kind", "Asset", "Expected at"}, rows, nil))
	}

	if failed {
		return errCheckFailed
	}
	fmt.Fprintln(w, colorizeStatus(fmt.Sprintf("OK: %d scenes, %d assets", len(store.Scenes()), len(scenes.StoryManifest(store))), ansiGreen, colorize))
	return nil
}
