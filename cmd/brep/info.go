package main

import (
	"fmt"

	"github.com/chazu/brep/pkg/savefile"
	"github.com/chazu/brep/pkg/srf"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info file",
		Short: "Describe a saved shell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := savefile.Load(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			exact := 0
			sh.Curve.Each(func(_ srf.HCurve, c *srf.SCurve) {
				if c.IsExact() {
					exact++
				}
			})
			bb := sh.Mesh().BoundingBox()
			fmt.Fprintf(w, "surfaces   %d\n", sh.Surface.Len())
			fmt.Fprintf(w, "curves     %d (%d exact, %d intersection)\n", sh.Curve.Len(), exact, sh.Curve.Len()-exact)
			fmt.Fprintf(w, "volume     %.6g\n", sh.Volume())
			fmt.Fprintf(w, "watertight %v\n", sh.IsWatertight())
			fmt.Fprintf(w, "bounds     %v %v\n", bb.Min, bb.Max)
			return nil
		},
	}
}
