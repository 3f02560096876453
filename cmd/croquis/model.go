package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chaz8081/croquis/internal/config"
	"github.com/chaz8081/croquis/internal/logger"
	"github.com/chaz8081/croquis/internal/models"
)

func newModelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage whisper models",
	}

	var (
		dir  string
		from string
	)
	download := &cobra.Command{
		Use:   "download [name]",
		Short: "Download a whisper.cpp ggml model (default: base.en)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := models.NewDownloader(dir, logger.Component(a.log, "models"))
			d.Progress = os.Stderr
			if from != "" {
				_, err := d.Install(from)
				return err
			}
			name := "base.en"
			if len(args) == 1 {
				name = args[0]
			}
			_, err := d.Download(cmd.Context(), name)
			return err
		},
	}
	download.Flags().StringVar(&dir, "dir", config.DefaultModelsDir(), "models directory")
	download.Flags().StringVar(&from, "from", "", "install a local ggml file instead of downloading")

	list := &cobra.Command{
		Use:   "list",
		Short: "List downloadable model names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, m := range models.Known {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
		},
	}

	cmd.AddCommand(download, list)
	return cmd
}
