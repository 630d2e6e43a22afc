package util

import (
	"fmt"
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/ValentinKolb/dcodec/lib/protocol"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/ValentinKolb/dcodec/lib/types"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"os"
	"strings"
	"sync"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables read by the CLI
	EnvPrefix = "dcodec"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetConfig reads the codec configuration from viper
func GetConfig() *common.CodecConfig {
	return &common.CodecConfig{
		Compression: viper.GetString("compression"),
		Format:      viper.GetString("format"),
		Metrics:     viper.GetBool("metrics"),
		LogLevel:    viper.GetString("log-level"),
	}
}

// GetSerializer creates a serializer producing the configured compression envelope
func GetSerializer() (serializer.ISerializer, error) {
	c, err := serializer.ParseCompression(viper.GetString("compression"))
	if err != nil {
		return nil, err
	}
	return serializer.NewMsgPackSerializer(serializer.WithCompression(c)), nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterTypes binds the domain types and protocol messages to the default registry.
// It is safe to call it more than once.
func RegisterTypes() error {
	registerOnce.Do(func() {
		r := serializer.DefaultRegistry()
		var result *multierror.Error
		if err := types.Register(r); err != nil {
			result = multierror.Append(result, err)
		}
		if err := protocol.Register(r); err != nil {
			result = multierror.Append(result, err)
		}
		registerErr = result.ErrorOrNil()
	})
	return registerErr
}

// --------------------------------------------------------------------------
// Input / Output
// --------------------------------------------------------------------------

// OpenInput returns the file named by args[i], or stdin if the argument is missing or "-"
func OpenInput(args []string, i int) (io.ReadCloser, error) {
	if len(args) <= i || args[i] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[i])
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

// OpenOutput returns the file named by args[i], or stdout if the argument is missing or "-"
func OpenOutput(args []string, i int) (io.WriteCloser, error) {
	if len(args) <= i || args[i] == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(args[i])
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, nil
}

// ReadInput reads the whole input named by args[i]
func ReadInput(args []string, i int) ([]byte, error) {
	in, err := OpenInput(args, i)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return io.ReadAll(in)
}

// WriteOutput writes b to the output named by args[i]
func WriteOutput(args []string, i int, b []byte) (err error) {
	out, err := OpenOutput(args, i)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()
	_, err = out.Write(b)
	return err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
