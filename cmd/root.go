package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dcodec/cmd/convert"
	"github.com/ValentinKolb/dcodec/cmd/inspect"
	"github.com/ValentinKolb/dcodec/cmd/perf"
	"github.com/ValentinKolb/dcodec/cmd/util"
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
)

const (
	Version = "1.0.0"
)

// Logger is the logger of the command line tool
var Logger = logger.GetLogger(common.LoggerCLI)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dcodec",
		Short: "binary codec for distributed store messages",
		Long: fmt.Sprintf(`dcodec (v%s)

Encode, decode and inspect the self-describing binary streams exchanged
between the nodes of the store.`, Version),
		PersistentPreRunE:  setup,
		PersistentPostRunE: dumpMetrics,
		SilenceUsage:       true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dcodec",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dcodec v%s\n", Version)
		},
	}
	typesCmd = &cobra.Command{
		Use:   "types",
		Short: "List all registered type tags",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), serializer.DefaultRegistry().String())
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(typesCmd)
	RootCmd.AddCommand(inspect.InspectCmd)
	RootCmd.AddCommand(convert.EncodeCmd)
	RootCmd.AddCommand(convert.DecodeCmd)
	RootCmd.AddCommand(convert.RecompressCmd)
	RootCmd.AddCommand(perf.PerfCmd)

	// Add Flags
	key := "compression"
	RootCmd.PersistentFlags().String(key, "none", util.WrapString("compression envelope of produced streams (none, lz4, zstd, gzip)"))
	key = "format"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("output format of decoded values (json, cbor, cbor-diag)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warning", util.WrapString("log level (debug, info, warning, error)"))
	key = "metrics"
	RootCmd.PersistentFlags().Bool(key, false, util.WrapString("print codec metrics in prometheus format after the command"))
}

// setup configures logging and registers all known types before any command runs
func setup(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}
	if err := util.RegisterTypes(); err != nil {
		return err
	}
	Logger.Debugf("configuration: %s", util.GetConfig())
	return nil
}

// dumpMetrics writes the codec counters to stderr if requested
func dumpMetrics(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("metrics") {
		serializer.WriteMetrics(cmd.ErrOrStderr())
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
