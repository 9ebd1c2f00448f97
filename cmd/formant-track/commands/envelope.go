package commands

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-formant/algorithms/speech"
	"github.com/RyanBlaney/sonido-formant/formant"
)

var (
	envelopeAt   time.Duration
	envelopeNFFT int
)

var envelopeCmd = &cobra.Command{
	Use:   "envelope [flags] <pcm-file|->",
	Short: "Print the LPC spectral envelope of one frame",
	Long: `Print the LPC spectral envelope, in dB, of the frame starting at --at.

The frame goes through the same downsampling, pre-emphasis, windowing and
linear prediction as in tracking, so the envelope peaks show where the
formant candidates come from.

Examples:
  formant-track envelope --at 1.2s speech.raw
  formant-track envelope --config formant.yaml --nfft 1024 speech.raw`,
	Args: cobra.ExactArgs(1),
	RunE: runEnvelope,
}

func init() {
	envelopeCmd.Flags().DurationVar(&envelopeAt, "at", 0, "start time of the frame")
	envelopeCmd.Flags().IntVar(&envelopeNFFT, "nfft", 512, "FFT length of the envelope")
}

type envelopeBin struct {
	Frequency float64 `yaml:"frequency"`
	Level     float64 `yaml:"level"`
}

type envelopeReport struct {
	SampleRate int           `yaml:"sample_rate"`
	RMS        float64       `yaml:"rms"`
	NormErr    float64       `yaml:"norm_err"`
	Stable     bool          `yaml:"stable"`
	Envelope   []envelopeBin `yaml:"envelope"`
}

func runEnvelope(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	frameLen, _, err := framing()
	if err != nil {
		return err
	}

	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	samples, err := readPCM(in)
	if err != nil {
		return err
	}

	start := int(envelopeAt.Seconds() * float64(sampleRate))
	if start < 0 || start+frameLen > len(samples) {
		return fmt.Errorf("no complete frame at %v (input is %d samples)", envelopeAt, len(samples))
	}

	p, err := formant.New(cfg)
	if err != nil {
		return err
	}
	model, rate, err := p.Analyze(speech.NewSampleWindow(samples[start:start+frameLen], sampleRate))
	if err != nil {
		return err
	}

	env := model.Envelope(envelopeNFFT)
	nfft := 2 * (len(env) - 1)
	report := envelopeReport{
		SampleRate: rate,
		RMS:        model.RMS,
		NormErr:    model.NormErr,
		Stable:     model.IsStable(),
		Envelope:   make([]envelopeBin, len(env)),
	}
	for i, v := range env {
		level := math.Inf(-1)
		if v > 0 {
			level = 20 * math.Log10(v)
		}
		report.Envelope[i] = envelopeBin{
			Frequency: float64(i) * float64(rate) / float64(nfft),
			Level:     level,
		}
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(report)
}
