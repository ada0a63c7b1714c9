package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/internal"
	"github.com/marketscope/marketscope/pkg/dataset"
)

var (
	log *logrus.Logger

	cfgFile string
)

var cmd = &cobra.Command{
	Use:   "marketscope",
	Short: "marketscope clusters companies into competitor groups from product and customer descriptions",
	Run:   func(cmd *cobra.Command, args []string) { _ = cmd.Help() },
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the clustering pipeline end to end",
	Run:   func(cmd *cobra.Command, args []string) { run() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the marketscope version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.VersionString)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration introspection",
}

var configSchemaCmd = &cobra.Command{
	Use:     "schema",
	Short:   "Generates JSON Schema for marketscope's configuration file",
	Example: "marketscope config schema > marketscope_config_schema.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := config.JSONSchema()
		if err != nil {
			return err
		}
		fmt.Println(string(schema))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		resolved, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(resolved))
		return nil
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test utilities",
}

var createFixturesCmd = &cobra.Command{
	Use:   "create-fixtures",
	Short: "Create a synthetic company table for testing",
	Run: func(cmd *cobra.Command, args []string) {
		fixtureCount, _ := cmd.Flags().GetInt("count")
		outputDir, _ := cmd.Flags().GetString("outputDir")
		if err := dataset.GenerateFixtureData(fixtureCount, outputDir); err != nil {
			log.Fatalf("Failed to create fixtures: %v\n", err)
		}
		fmt.Println("Fixtures created successfully.")
	},
}

func init() {
	configCmd.AddCommand(configSchemaCmd)
	configCmd.AddCommand(configShowCmd)
	testCmd.AddCommand(createFixturesCmd)
	cmd.AddCommand(runCmd)
	cmd.AddCommand(versionCmd)
	cmd.AddCommand(configCmd)
	cmd.AddCommand(testCmd)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config.yaml)")

	createFixturesCmd.Flags().Int("count", 100, "Number of companies to generate")
	createFixturesCmd.Flags().String("outputDir", "./test_data", "Path to output fixtures")
}

// Execute executes the root cobra command.
func Execute() {
	log = internal.GetLogger()
	log.SetLevel(logrus.InfoLevel)

	err := cmd.Execute()

	if err != nil {
		os.Exit(1)
	}
}
