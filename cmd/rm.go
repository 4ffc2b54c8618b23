package cmd

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	rmPath  string
	rmForce bool
)

var rmCmd = &cobra.Command{
	Use:   "rm FILE",
	Short: "Delete a file from the document share",
	Args:  cobra.ExactArgs(1),
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

		filename := args[0]

		if !rmForce {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Delete %s from %q", filename, displayPath(rmPath)),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Println("Aborted.")
				return nil
			}
		}

		_, filesClient, _ := buildClients(cfg, logger)
		if err := filesClient.Delete(cmd.Context(), rmPath, filename); err != nil {
			return fmt.Errorf("deleting %s: %w", filename, err)
		}

		fmt.Printf("Deleted %s\n", strings.TrimPrefix(rmPath+"/"+filename, "/"))
		return nil
	},
}

func displayPath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

func init() {
	rmCmd.Flags().StringVar(&rmPath, "path", "", "folder on the share containing the file")
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "skip the confirmation prompt")
	rootCmd.AddCommand(rmCmd)
}
