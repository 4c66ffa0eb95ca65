package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"perfreview/internal/domain/catalog"
)

// NewRootCommand builds the perfctl command tree. Each call returns an
// independent tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PERFCTL")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "perfctl",
		Short: "Inspect the performance metric catalog and score assessments offline",
		Long: `perfctl works against the metric catalog used by the review server.

It can list the metrics that apply to a role, check that every role's weights
add up to 100, classify a score into its rating band and compute a full
weighted score from metric values.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("catalog", "", "Path to a catalog YAML file (defaults to the embedded catalog)")
	root.PersistentFlags().Bool("no-color", false, "Disable styled output")
	_ = v.BindPFlag("catalog", root.PersistentFlags().Lookup("catalog"))
	_ = v.BindPFlag("no-color", root.PersistentFlags().Lookup("no-color"))

	root.AddCommand(
		newCatalogCommand(v),
		newCheckCommand(v),
		newRateCommand(v),
		newScoreCommand(v),
		newTokenCommand(v),
	)
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadCatalog(v *viper.Viper) (*catalog.Catalog, error) {
	if path := v.GetString("catalog"); path != "" {
		return catalog.LoadFile(path)
	}
	return catalog.Default()
}
