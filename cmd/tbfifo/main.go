// The tbfifo command drives the FIFO testbench model through the driver
// loop and records a waveform trace.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/hwbench/hwbench/model/fifo"
	"github.com/hwbench/hwbench/monitoring"
	"github.com/hwbench/hwbench/record"
	"github.com/hwbench/hwbench/sim"
	"github.com/hwbench/hwbench/wave"
)

var (
	output      string
	maxSteps    uint64
	useDB       bool
	monitorOn   bool
	monitorPort int
	profileOn   bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "tbfifo [forwarded args]",
	Short: "tbfifo drives the FIFO testbench model and records a waveform trace.",
	Long: `tbfifo instantiates the self-clocking FIFO testbench model and runs ` +
		`the driver loop until the model signals completion. Arguments after ` +
		`the flags are forwarded to the simulation context uninterpreted.`,
	Run: run,
}

func init() {
	_ = godotenv.Load()

	rootCmd.Flags().StringVarP(&output, "output", "o",
		envDefault("HWBENCH_OUTPUT", "fifo_waveform.vcd"),
		"waveform output file")
	rootCmd.Flags().Uint64Var(&maxSteps, "max-steps", 0,
		"safety ceiling on loop iterations, 0 for unbounded")
	rootCmd.Flags().BoolVar(&useDB, "db", false,
		"record the waveform into a SQLite database instead of a VCD file")
	rootCmd.Flags().BoolVar(&monitorOn, "monitor", false,
		"serve a monitoring API while the simulation runs")
	rootCmd.Flags().IntVar(&monitorPort, "monitor-port",
		envIntDefault("HWBENCH_MONITOR_PORT", 0),
		"port for the monitoring server, 0 for a random port")
	rootCmd.Flags().BoolVar(&profileOn, "profile", false,
		"collect a CPU profile of the run")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false,
		"log every driver step")
}

func run(_ *cobra.Command, args []string) {
	if profileOn {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	ctx := sim.NewContext(args)
	model := fifo.MakeBuilder().WithContext(ctx).Build()

	artifact := output

	var recorder sim.Recorder
	if useDB {
		dbPath := strings.TrimSuffix(output, ".vcd")
		artifact = dbPath + ".sqlite3"
		recorder = record.NewDBRecorder(ctx, dbPath)
	} else {
		recorder = wave.NewVCD(output)
	}

	builder := sim.MakeBuilder().
		WithContext(ctx).
		WithModel(model).
		WithRecorder(recorder)
	if maxSteps > 0 {
		builder = builder.WithStepLimit(sim.VTime(maxSteps))
	}

	driver := builder.Build()

	if verbose {
		driver.AcceptHook(sim.NewStepLogger(log.New(os.Stderr, "", 0)))
	}

	if monitorOn {
		monitor := monitoring.NewMonitor()
		if monitorPort > 0 {
			monitor.WithPortNumber(monitorPort)
		}
		monitor.RegisterDriver(driver)
		monitor.StartServer()
	}

	_, err := driver.Run()
	if err != nil {
		log.Println(err)
		atexit.Exit(1)
	}

	fmt.Println("--- Simulation Finished ---")
	fmt.Println("Waveform saved to:", artifact)
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envIntDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
