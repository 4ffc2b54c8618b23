package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/matdash/matdash/internal/files"
)

var uploadPath string

var uploadCmd = &cobra.Command{
	Use:   "upload FILE [FILE...]",
	Short: "Upload files to the document share",
	Long:  `Uploads one or more local files to the share, one at a time, the same way the dashboard's upload queue does.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := buildLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		_, filesClient, _ := buildClients(cfg, logger)
		uploader := files.NewUploader(filesClient, nil, logger)

		uploads := make([]files.Upload, 0, len(args))
		var open []*os.File
		defer func() {
			for _, f := range open {
				f.Close()
			}
		}()
		for _, arg := range args {
			f, err := os.Open(arg)
			if err != nil {
				return fmt.Errorf("opening %s: %w", arg, err)
			}
			open = append(open, f)
			uploads = append(uploads, files.Upload{Name: filepath.Base(arg), Content: f})
		}

		bar := progressbar.NewOptions(100,
			progressbar.OptionSetDescription("Uploading"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		)

		batch := uploader.UploadAll(cmd.Context(), uploadPath, uploads, func(percent int) {
			_ = bar.Set(percent)
		})
		_ = bar.Finish()

		for _, result := range batch.Results {
			if result.Success {
				fmt.Printf("  ok    %s\n", result.Name)
			} else {
				fmt.Printf("  fail  %s: %s\n", result.Name, result.Error)
			}
		}
		fmt.Printf("%d uploaded, %d failed (batch %s)\n", batch.Succeeded, batch.Failed, batch.BatchID)

		if batch.Failed > 0 {
			return fmt.Errorf("%d of %d uploads failed", batch.Failed, len(batch.Results))
		}
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadPath, "path", "", "destination folder on the share")
	rootCmd.AddCommand(uploadCmd)
}
