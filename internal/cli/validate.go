package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docload/docload/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the workload definitions in the config directory",
	RunE:  validateWorkloads,
}

func validateWorkloads(cmd *cobra.Command, args []string) error {
	configDir, _ := cmd.Flags().GetString("config-dir")

	entries, err := os.ReadDir(configDir)
	if err != nil {
		return fmt.Errorf("reading config directory: %w", err)
	}

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	failures := 0
	checked := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if (ext != ".json" && ext != ".yaml" && ext != ".yml") ||
			strings.HasSuffix(strings.ToLower(stem), "_startup") {
			continue
		}
		checked++
		path := filepath.Join(configDir, entry.Name())
		if _, err := config.LoadWorkload(path); err != nil {
			failures++
			fmt.Printf("%s %s: %v\n", bad("FAIL"), entry.Name(), err)
			continue
		}
		fmt.Printf("%s %s\n", ok("OK"), entry.Name())
	}

	if checked == 0 {
		return fmt.Errorf("no workload definitions found in %s", configDir)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d workload definitions failed validation", failures, checked)
	}
	return nil
}
