package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/brep/pkg/engine"
	"github.com/chazu/brep/pkg/export"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/kernel/brep"
	"github.com/chazu/brep/pkg/kernel/sdfx"
	"github.com/chazu/brep/pkg/savefile"
	"github.com/chazu/brep/pkg/srf"
	"github.com/chazu/brep/pkg/tessellate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errScript = errors.New("script failed")

func newRunCmd(v *viper.Viper, log func() *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run script",
		Short: "Evaluate a script and export the parts it defines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, v, log(), args[0])
		},
	}
	f := cmd.Flags()
	f.String(keyKernel, "brep", "geometry kernel: brep or sdfx")
	f.Duration(keyTimeout, engine.EvalTimeout, "evaluation time limit")
	f.String(keySTL, "", "write all parts as one binary STL file")
	f.String(keySave, "", "write the union of all parts as a shell file")
	f.String(keyDXF, "", "write the edges of the union of all parts as DXF")
	cobra.CheckErr(v.BindPFlags(f))
	return cmd
}

func newKernel(name string) (kernel.Kernel, error) {
	switch name {
	case "brep":
		return brep.New(), nil
	case "sdfx":
		return sdfx.New(), nil
	}
	return nil, fmt.Errorf("unknown kernel %q", name)
}

func runScript(cmd *cobra.Command, v *viper.Viper, log *slog.Logger, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	k, err := newKernel(v.GetString(keyKernel))
	if err != nil {
		return err
	}

	eng := engine.NewEngine(k)
	eng.Timeout = v.GetDuration(keyTimeout)
	eng.Logger = log
	sc, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, e)
		}
		return fmt.Errorf("%s: %w", path, errScript)
	}

	meshes, err := tessellate.Tessellate(sc, k)
	if err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), tessellate.Summarize(meshes))

	if out := v.GetString(keySTL); out != "" {
		if err := export.WriteSTL(out, tessellate.Merge(meshes)); err != nil {
			return err
		}
	}
	save, dxf := v.GetString(keySave), v.GetString(keyDXF)
	if save == "" && dxf == "" {
		return nil
	}
	sh, err := combine(sc, k)
	if err != nil {
		return err
	}
	if save != "" {
		if err := savefile.Save(save, sh); err != nil {
			return err
		}
	}
	if dxf != "" {
		if err := export.WriteDXF(dxf, sh); err != nil {
			return err
		}
	}
	return nil
}

// combine unions every part of sc into one shell. Only the brep kernel
// produces shells.
func combine(sc *engine.Scene, k kernel.Kernel) (*srf.Shell, error) {
	if sc.Len() == 0 {
		return nil, errors.New("script defines no parts")
	}
	acc := sc.Parts[0].Solid
	for _, p := range sc.Parts[1:] {
		u, err := k.Union(acc, p.Solid)
		if err != nil {
			return nil, fmt.Errorf("union with %q: %w", p.Name, err)
		}
		acc = u
	}
	sh, ok := brep.ShellOf(acc)
	if !ok {
		return nil, fmt.Errorf("--%s and --%s need the brep kernel", keySave, keyDXF)
	}
	return sh, nil
}

func printStats(w io.Writer, stats []tessellate.Stats) {
	for _, s := range stats {
		fmt.Fprintf(w, "%-16s %7d triangles  volume %-10.6g bounds %v %v\n",
			s.Name, s.Triangles, s.Volume, s.Min, s.Max)
	}
}
