package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"breedd/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// rootOptions carries the resolved configuration to every subcommand.
type rootOptions struct {
	configFile string
	envFiles   []string

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "breedd",
		Short: "Two-stage cattle and buffalo breed identification",
		Long: `breedd identifies the animal type (cattle or buffalo) and the breed of a
bovine photograph, explains the decision with Grad-CAM heatmaps and serves a
breed catalog over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.resolve(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configFile, "config", "c", "", "config file (.yaml, .yml, .toml or .json); defaults to $BREEDD_CONFIG")
	pf.StringSliceVar(&o.envFiles, "env-file", nil, "dotenv files to load before reading BREEDD_* variables (default .env)")
	pf.String("models-dir", "", "directory holding the classifier artifacts")
	pf.String("breed-data", "", "path to the breed catalog JSON")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: json or console")
	pf.String("onnx-library", "", "path to the onnxruntime shared library")
	pf.String("backbone", "", "shared ONNX feature extractor used by Grad-CAM")
	pf.Int64("seed", 0, "seed for demo weights (0 derives one per model)")
	pf.Int("top-k", 0, "number of ranked breeds per prediction")
	pf.Bool("disable-gradcam", false, "never produce heatmaps")

	root.AddCommand(
		newServeCmd(o),
		newPredictCmd(o),
		newModelsCmd(o),
		newVersionCmd(),
	)
	root.AddCommand(newCompletionCmd(root))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// resolve layers configuration: defaults, config file, dotenv and BREEDD_*
// variables, then flags set on the command line.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(o.envFiles...); err != nil {
		return err
	}
	path := o.configFile
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	var cfg config.Config
	if path != "" {
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = c
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := applyFlags(cmd.Flags(), &cfg); err != nil {
		return err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	o.log = newLogger(cfg, cmd.ErrOrStderr())
	return nil
}

// applyFlags copies explicitly set flags into cfg. Flags a command does not
// define are skipped.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error
	set := func(name string, fn func(f *pflag.Flag) error) {
		f := fs.Lookup(name)
		if err != nil || f == nil || !f.Changed {
			return
		}
		if e := fn(f); e != nil {
			err = fmt.Errorf("--%s: %w", name, e)
		}
	}
	str := func(name string, dst *string) {
		set(name, func(f *pflag.Flag) error { *dst = f.Value.String(); return nil })
	}

	str("addr", &cfg.Addr)
	str("models-dir", &cfg.ModelsDir)
	str("breed-data", &cfg.BreedData)
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	str("onnx-library", &cfg.ONNXLibrary)
	str("backbone", &cfg.Backbone)
	set("seed", func(*pflag.Flag) (e error) { cfg.Seed, e = fs.GetInt64("seed"); return })
	set("top-k", func(*pflag.Flag) (e error) { cfg.TopK, e = fs.GetInt("top-k"); return })
	set("max-queue-depth", func(*pflag.Flag) (e error) { cfg.MaxQueueDepth, e = fs.GetInt("max-queue-depth"); return })
	set("max-inflight", func(*pflag.Flag) (e error) { cfg.MaxInflight, e = fs.GetInt("max-inflight"); return })
	set("max-wait", func(*pflag.Flag) error {
		d, e := fs.GetDuration("max-wait")
		cfg.MaxWait = config.Duration(d)
		return e
	})
	set("request-timeout", func(*pflag.Flag) error {
		d, e := fs.GetDuration("request-timeout")
		cfg.RequestTimeout = config.Duration(d)
		return e
	})
	set("gradcam-opacity", func(*pflag.Flag) (e error) { cfg.GradCAMOpacity, e = fs.GetFloat64("gradcam-opacity"); return })
	set("disable-gradcam", func(*pflag.Flag) (e error) { cfg.DisableGradCAM, e = fs.GetBool("disable-gradcam"); return })
	set("max-upload-bytes", func(*pflag.Flag) (e error) { cfg.MaxUploadBytes, e = fs.GetInt64("max-upload-bytes"); return })
	set("cors-origins", func(*pflag.Flag) error {
		v, e := fs.GetString("cors-origins")
		cfg.CORSOrigins = config.SplitList(v)
		return e
	})
	return err
}

func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(cfg.LogFormat, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "breedd").Logger()
}
