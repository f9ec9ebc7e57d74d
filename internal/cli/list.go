package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docload/docload/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the workloads and tasks found in the config directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, _ := cmd.Flags().GetString("config-dir")
		workloads, err := config.LoadDir(configDir, zap.NewNop())
		if err != nil {
			return err
		}
		if len(workloads) == 0 {
			return fmt.Errorf("no workload definitions found in %s", configDir)
		}
		for _, wl := range workloads {
			fmt.Printf("%s (startup: %s)\n", wl.Name, wl.StartUp)
			for _, t := range wl.Tasks {
				fmt.Printf("  %-24s weight=%d  %s %s.%s batch=%d\n",
					t.Name, t.Weight, t.Command.Kind,
					t.Command.Database, t.Command.Collection, t.Command.Batch())
			}
		}
		return nil
	},
}
