package perf

import (
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/dcodec/cmd/util"
	"github.com/ValentinKolb/dcodec/lib/protocol"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/ValentinKolb/dcodec/lib/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	// PerfCmd measures encode and decode throughput for every compression envelope
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the codec",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfValues      = 100
	perfValueSizeKB = 1
	perfNumThreads  = 10
	perfSkip        = make([]string, 0)
)

func init() {
	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Compressions to skip (comma separated - e.g. gzip,zstd)"))
	key = "threads"
	PerfCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "values"
	PerfCmd.Flags().Int(key, 100, util.WrapString("How many values the benchmark response carries"))
	key = "value-size"
	PerfCmd.Flags().Int(key, 1, util.WrapString("How large every value should be (in KB)"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	perfValues = viper.GetInt("values")
	perfValueSizeKB = viper.GetInt("value-size")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for the codec")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetConfig().String())
	fmt.Printf("Threads: %d, Values: %d, Value Size: %d KB\n", perfNumThreads, perfValues, perfValueSizeKB)
	fmt.Println()

	fmt.Println("starting tests...")

	msg := sampleResponse()
	results := make(map[string]testing.BenchmarkResult)

	for _, c := range []serializer.Compression{
		serializer.CompressionNone,
		serializer.CompressionLZ4,
		serializer.CompressionZstd,
		serializer.CompressionGzip,
	} {
		if shouldSkip(string(c)) {
			continue
		}
		s := serializer.NewMsgPackSerializer(serializer.WithCompression(c))

		encoded, err := s.Serialize(msg)
		if err != nil {
			return fmt.Errorf("(%s) - error serializing sample: %w", c, err)
		}
		fmt.Printf("%-20s%d bytes\n", string(c)+"-size", len(encoded))

		name := string(c) + "-serialize"
		results[name] = testing.Benchmark(func(b *testing.B) {
			b.SetParallelism(perfNumThreads)
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if _, err := s.Serialize(msg); err != nil {
						b.Errorf("(%s) - error serializing: %v", name, err)
					}
				}
			})
		})
		printResult(name, results[name])

		name = string(c) + "-deserialize"
		results[name] = testing.Benchmark(func(b *testing.B) {
			b.SetParallelism(perfNumThreads)
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if _, err := s.Deserialize(encoded); err != nil {
						b.Errorf("(%s) - error deserializing: %v", name, err)
					}
				}
			})
		})
		printResult(name, results[name])
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", csvPath)
	}
	return nil
}

// sampleResponse builds a response carrying perfValues values of perfValueSizeKB each
func sampleResponse() *protocol.Response {
	values := types.NewValueMap()
	payload := []byte(strings.Repeat(`{"field":"value"}`, max(perfValueSizeKB*1024/17, 1)))
	for i := 0; i < perfValues; i++ {
		values.Put(types.Key("key-"+strconv.Itoa(i)), types.NewValue(payload))
	}
	return protocol.NewValuesResponse("perf", values)
}

func shouldSkip(test string) bool {
	for _, s := range perfSkip {
		if strings.TrimSpace(s) == test {
			return true
		}
	}
	return false
}

func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "BytesPerOp", "AllocsPerOp", "Threads", "Values", "ValueSizeKB"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for test, result := range results {
		nsPerOp := math.Max(float64(result.NsPerOp()), 1)
		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", 1.0/(nsPerOp/1e9)),
			strconv.FormatInt(result.AllocedBytesPerOp(), 10),
			strconv.FormatInt(result.AllocsPerOp(), 10),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfValues),
			strconv.Itoa(perfValueSizeKB),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
