package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opscart/tkgi-app-tracker/pkg/collector"
)

var (
	collectFoundation string
	collectCluster    string
	collectKubeconfig string
	collectOutputDir  string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect the namespace inventory from one TKGI cluster",
	RunE:  runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&collectFoundation, "foundation", "",
		"foundation the cluster belongs to (required)")
	collectCmd.Flags().StringVar(&collectCluster, "cluster", "",
		"cluster name (required)")
	collectCmd.Flags().StringVar(&collectKubeconfig, "kubeconfig", "",
		"kubeconfig path (default ~/.kube/config)")
	collectCmd.Flags().StringVar(&collectOutputDir, "output-dir", "",
		"directory for the inventory file (defaults to the configured data_dir)")
	collectCmd.MarkFlagRequired("foundation")
	collectCmd.MarkFlagRequired("cluster")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	outputDir := cfg.DataDir
	if collectOutputDir != "" {
		outputDir = collectOutputDir
	}

	c, err := collector.New(collectKubeconfig, collectFoundation, collectCluster, logger)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	records, err := c.Collect(cmd.Context(), now)
	if err != nil {
		return err
	}

	path, err := c.WriteInventory(outputDir, records, now)
	if err != nil {
		return err
	}
	fmt.Printf("Inventory saved to: %s (%d namespaces)\n", path, len(records))
	return nil
}
