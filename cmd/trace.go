// Package cmd implements the CLI command handlers.
package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/opticore/opticore/pkg/loaders"
	"github.com/opticore/opticore/pkg/log"
	"github.com/opticore/opticore/pkg/pipeline"
	"github.com/opticore/opticore/pkg/ray"
)

var logger = log.New("opticore")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Debug)
	}
}

// Trace loads a system, traces a collimated ray grid through it and prints a
// per-surface summary.
func Trace(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing system file argument")
	}
	group, err := loaders.LoadSystemFile(ctx.Args().First())
	if err != nil {
		return err
	}

	batch := gridBatch(ctx.Int("rays"), ctx.Float64("aperture"), ctx.Float64("wavelength"))
	if ctx.Bool("polarization") {
		batch.EnablePolarization()
	}

	if _, err := group.Trace(batch); err != nil {
		return err
	}
	displayTraceSummary(group)

	if out := ctx.String("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := loaders.WriteSnapshots(f, group.Snapshots()); err != nil {
			return err
		}
		logger.Noticef("wrote %d surface snapshots to %s", group.NumSurfaces(), out)
	}
	return nil
}

// gridBatch builds a square grid of collimated rays parallel to the optical
// axis, launched from z = 0.
func gridBatch(perAxis int, halfWidth, wavelengthUm float64) *ray.Batch {
	if perAxis < 1 {
		perAxis = 1
	}
	b := ray.New(perAxis*perAxis, wavelengthUm)
	idx := 0
	for iy := 0; iy < perAxis; iy++ {
		for ix := 0; ix < perAxis; ix++ {
			if perAxis > 1 {
				b.X[idx] = -halfWidth + 2*halfWidth*float64(ix)/float64(perAxis-1)
				b.Y[idx] = -halfWidth + 2*halfWidth*float64(iy)/float64(perAxis-1)
			}
			idx++
		}
	}
	return b
}

func displayTraceSummary(group *pipeline.Group) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Comment", "Stop", "Alive", "Mean OPD (mm)"})

	for i, snap := range group.Snapshots() {
		alive := 0
		opdSum := 0.0
		for j := range snap.Intensity {
			if snap.Intensity[j] > 0 {
				alive++
				opdSum += snap.OPD[j]
			}
		}
		meanOPD := 0.0
		if alive > 0 {
			meanOPD = opdSum / float64(alive)
		}
		s := group.SurfaceAt(i)
		stop := ""
		if s.IsStop {
			stop = "*"
		}
		table.Append([]string{
			fmt.Sprintf("%d", i),
			s.Comment,
			stop,
			fmt.Sprintf("%d/%d", alive, len(snap.Intensity)),
			fmt.Sprintf("%.6f", meanOPD),
		})
	}
	table.Render()
	logger.Noticef("trace summary\n%s", buf.String())
}
