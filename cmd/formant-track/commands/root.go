package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-formant/formant"
	"github.com/RyanBlaney/sonido-formant/formant/config"
	"github.com/RyanBlaney/sonido-formant/logging"
)

var (
	sampleRate int
	frameDur   time.Duration
	hopDur     time.Duration
	configFile string
	gateLevel  float64
	streamMode bool
	batchMode  bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "formant-track [flags] <pcm-file|->",
	Short: "Estimate formant trajectories of raw PCM speech",
	Long: `Estimate formant frequencies and bandwidths of mono speech.

The input is raw signed 16-bit little-endian PCM, read from a file or from
stdin when the argument is "-". Each frame is analysed by linear prediction
and the formants are tracked across frames by dynamic programming.

Example config file (formant.yaml):
  order: 12
  formant_count: 4
  window: cos4
  target_sample_rate: 10000
  nominal_f1: 0
  weights:
    df_fact: 20

Examples:
  formant-track --rate 16000 speech.raw
  formant-track --config formant.yaml --batch --gate 200 speech.raw
  arecord -f S16_LE -r 16000 -c 1 | formant-track --stream -`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetGlobalLogger(logging.NewWriterLogger(os.Stderr, logging.ParseLevel(logLevel)))
	},
	RunE: runTrack,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&sampleRate, "rate", "r", 16000, "input sample rate in Hz")
	pf.DurationVar(&frameDur, "frame", 49*time.Millisecond, "analysis window length")
	pf.DurationVar(&hopDur, "hop", 10*time.Millisecond, "time between frames")
	pf.StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	f := rootCmd.Flags()
	f.Float64Var(&gateLevel, "gate", 0, "skip frames whose RMS is below this level (0 disables)")
	f.BoolVar(&streamMode, "stream", false, "emit each frame as soon as it is analysed")
	f.BoolVar(&batchMode, "batch", false, "backtrace the globally cheapest trajectory (ignored with --stream)")

	rootCmd.AddCommand(envelopeCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads --config over the defaults
func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

// framing converts --frame and --hop to sample counts at --rate
func framing() (frameLen, hop int, err error) {
	if sampleRate <= 0 {
		return 0, 0, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	frameLen = int(frameDur.Seconds() * float64(sampleRate))
	hop = int(hopDur.Seconds() * float64(sampleRate))
	if frameLen <= 0 || hop <= 0 {
		return 0, 0, fmt.Errorf("frame (%v) and hop (%v) must span at least one sample", frameDur, hopDur)
	}
	return frameLen, hop, nil
}

// applyBatchFlag lets an explicit --batch override the config file
func applyBatchFlag(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("batch") {
		cfg.Batch, _ = cmd.Flags().GetBool("batch")
	}
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	frameLen, hop, err := framing()
	if err != nil {
		return err
	}

	var gate *formant.EnergyGate
	if gateLevel > 0 {
		gate = formant.NewEnergyGate(gateLevel)
	}

	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	out := newFrameWriter(cmd.OutOrStdout(), hopDur)
	defer out.Close()

	if streamMode {
		cfg.Batch = false
		return streamFrames(in, cfg, frameLen, hop, gate, out)
	}

	samples, err := readPCM(in)
	if err != nil {
		return err
	}

	applyBatchFlag(cmd, cfg)
	estimates, err := formant.Track(samples, sampleRate, formant.TrackOptions{
		FrameLength: frameLen,
		Hop:         hop,
		Gate:        gate,
	}, cfg)
	if err != nil {
		return err
	}

	logging.Info("Tracked recording", logging.Fields{
		"samples": len(samples),
		"frames":  len(estimates),
		"batch":   cfg.Batch,
	})
	return out.WriteAll(estimates)
}
