package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/opticore/opticore/pkg/geometry"
	"github.com/opticore/opticore/pkg/interaction"
	"github.com/opticore/opticore/pkg/loaders"
)

// Surfaces lists the assembled surfaces of a system description.
func Surfaces(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing system file argument")
	}
	group, err := loaders.LoadSystemFile(ctx.Args().First())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "ID", "Comment", "Geometry", "Interaction", "Thickness", "Stop"})

	for i := 0; i < group.NumSurfaces(); i++ {
		s := group.SurfaceAt(i)
		geomTag := "?"
		if enc, err := geometry.Encode(s.Geometry); err == nil {
			geomTag = enc.Type
		}
		modelTag := "?"
		if enc, err := interaction.Encode(s.Model); err == nil {
			modelTag = enc.Type
		}
		stop := ""
		if s.IsStop {
			stop = "*"
		}
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		table.Append([]string{
			fmt.Sprintf("%d", i),
			id,
			s.Comment,
			geomTag,
			modelTag,
			fmt.Sprintf("%.4f", s.Thickness),
			stop,
		})
	}
	table.Render()
	logger.Noticef("system surfaces\n%s", buf.String())
	return nil
}
