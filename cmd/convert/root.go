package convert

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dcodec/cmd/util"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"reflect"
)

var (
	// EncodeCmd turns a JSON document into an encoded stream
	EncodeCmd = &cobra.Command{
		Use:   "encode [in|-] [out|-]",
		Short: "Encode a JSON document as a stream of the given type",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runEncode,
	}

	// DecodeCmd renders an encoded stream as JSON or CBOR
	DecodeCmd = &cobra.Command{
		Use:   "decode [in|-] [out|-]",
		Short: "Decode a stream and render its value (json, cbor, cbor-diag)",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runDecode,
	}

	// RecompressCmd rewrites an encoded stream with another compression envelope
	RecompressCmd = &cobra.Command{
		Use:   "recompress [in|-] [out|-]",
		Short: "Rewrite a stream with the configured compression envelope",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runRecompress,
	}
)

func init() {
	key := "type"
	EncodeCmd.Flags().String(key, "", util.WrapString("Type tag of the encoded value (see dcodec types)"))
	_ = EncodeCmd.MarkFlagRequired(key)
}

func runEncode(cmd *cobra.Command, args []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	doc, err := util.ReadInput(args, 0)
	if err != nil {
		return err
	}

	tag := viper.GetString("type")
	ptr, err := s.Registry().New(tag)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(doc, ptr); err != nil {
		return fmt.Errorf("input is not a valid %s document: %w", tag, err)
	}

	b, err := s.Serialize(reflect.ValueOf(ptr).Elem().Interface())
	if err != nil {
		return err
	}
	return util.WriteOutput(args, 1, b)
}

func runDecode(cmd *cobra.Command, args []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	in, err := util.OpenInput(args, 0)
	if err != nil {
		return err
	}
	defer in.Close()

	v, err := serializer.Default().DeserializeFrom(in)
	if err != nil {
		return err
	}
	rendered, err := util.Render(v, viper.GetString("format"))
	if err != nil {
		return err
	}
	return util.WriteOutput(args, 1, rendered)
}

func runRecompress(cmd *cobra.Command, args []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	in, err := util.OpenInput(args, 0)
	if err != nil {
		return err
	}
	defer in.Close()

	// the envelope of the input is detected, the output uses the configured one
	v, err := s.DeserializeFrom(in)
	if err != nil {
		return err
	}

	out, err := util.OpenOutput(args, 1)
	if err != nil {
		return err
	}
	if err := s.SerializeTo(out, v); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
