package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chazu/brep/pkg/srf"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "BREP"

// Configuration keys. Each is also a flag name and, upper-cased with
// dashes turned into underscores, an environment variable under BREP_.
const (
	keyConfig         = "config"
	keyLogLevel       = "log-level"
	keyLengthEps      = "length-eps"
	keyChordTol       = "chord-tol"
	keyMaxPwlDepth    = "max-pwl-depth"
	keyClassifyOffset = "classify-offset"
	keyRetryScale     = "retry-scale"
	keyKernel         = "kernel"
	keyTimeout        = "timeout"
	keySTL            = "stl"
	keySave           = "save"
	keyDXF            = "dxf"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var log *slog.Logger
	root := &cobra.Command{
		Use:           "brep",
		Short:         "Boundary representation solid modelling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := readConfig(v); err != nil {
				return err
			}
			l, err := newLogger(cmd, v.GetString(keyLogLevel))
			if err != nil {
				return err
			}
			log = l
			srf.SetLogger(log)
			srf.SetTolerances(tolerances(v))
			return nil
		},
	}

	d := srf.DefaultTolerances()
	pf := root.PersistentFlags()
	pf.String(keyConfig, "", "config file (default .brep.yaml in the working directory)")
	pf.String(keyLogLevel, "warn", "log level: debug, info, warn or error")
	pf.Float64(keyLengthEps, d.LengthEps, "distance below which two points coincide")
	pf.Float64(keyChordTol, d.ChordTol, "maximum chord deviation of linearized curves")
	pf.Int(keyMaxPwlDepth, d.MaxPwlDepth, "maximum bisection depth of curve linearization")
	pf.Float64(keyClassifyOffset, d.ClassifyOffset, "offset used when classifying regions in a union")
	pf.Float64(keyRetryScale, d.RetryScale, "factor a failed union widens its tolerances by before retrying")
	cobra.CheckErr(v.BindPFlags(pf))

	root.AddCommand(newRunCmd(v, func() *slog.Logger { return log }))
	root.AddCommand(newInfoCmd())
	return root
}

// readConfig loads the file named by --config, or .brep.* from the
// working directory when present.
func readConfig(v *viper.Viper) error {
	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		return nil
	}
	v.SetConfigName(".brep")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func newLogger(cmd *cobra.Command, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl})
	return slog.New(h), nil
}

func tolerances(v *viper.Viper) srf.Tolerances {
	return srf.Tolerances{
		LengthEps:      v.GetFloat64(keyLengthEps),
		ChordTol:       v.GetFloat64(keyChordTol),
		MaxPwlDepth:    v.GetInt(keyMaxPwlDepth),
		ClassifyOffset: v.GetFloat64(keyClassifyOffset),
		RetryScale:     v.GetFloat64(keyRetryScale),
	}
}
