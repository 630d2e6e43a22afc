package inspect

import (
	"fmt"
	"github.com/ValentinKolb/dcodec/cmd/util"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

var (
	// InspectCmd reports the structure of an encoded stream
	InspectCmd = &cobra.Command{
		Use:   "inspect [file|-]",
		Short: "Show envelope, type tag and content of an encoded stream",
		Long: `Reads one encoded stream and prints its compression envelope, type tag,
encoded and payload size, followed by the decoded value.`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}
)

func init() {
	key := "value"
	InspectCmd.Flags().Bool(key, true, util.WrapString("Whether to print the decoded value"))
}

func run(cmd *cobra.Command, args []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	b, err := util.ReadInput(args, 0)
	if err != nil {
		return err
	}

	info, err := serializer.Default().Inspect(b)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, formatInfo(info))

	if !viper.GetBool("value") {
		return nil
	}
	rendered, err := util.Render(info.Value, viper.GetString("format"))
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	_, err = out.Write(rendered)
	return err
}

// formatInfo returns the stream description in the sectioned layout of the CLI
func formatInfo(info serializer.StreamInfo) string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Stream")
	addField("Compression", string(info.Compression))
	addField("Type Tag", info.Tag)
	addField("Go Type", fmt.Sprintf("%T", info.Value))
	addField("Encoded Size", fmt.Sprintf("%d bytes", info.EncodedSize))
	addField("Payload Size", fmt.Sprintf("%d bytes", info.PayloadSize))
	if info.PayloadSize > 0 && info.Compression != serializer.CompressionNone {
		addField("Ratio", fmt.Sprintf("%.2f", float64(info.EncodedSize)/float64(info.PayloadSize)))
	}
	return sb.String()
}
