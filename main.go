package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/opticore/opticore/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "opticore"
	app.Usage = "sequential optical ray tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "trace",
			Usage: "trace a ray fan through a system description",
			Description: `
Load a JSON system description, trace a square grid of collimated rays
through the surface pipeline, print a per-surface summary table and
optionally dump every per-surface ray snapshot to a compressed file.`,
			ArgsUsage: "system.json",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "rays",
					Value: 32,
					Usage: "rays per grid axis",
				},
				cli.Float64Flag{
					Name:  "aperture",
					Value: 10.0,
					Usage: "half-width of the entrance ray grid (mm)",
				},
				cli.Float64Flag{
					Name:  "wavelength",
					Value: 0.5876,
					Usage: "trace wavelength (µm)",
				},
				cli.BoolFlag{
					Name:  "polarization",
					Usage: "track per-ray polarization transfer matrices",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "write per-surface snapshots to this .json.gz file",
				},
			},
			Action: cmd.Trace,
		},
		{
			Name:      "surfaces",
			Usage:     "list the surfaces of a system description",
			ArgsUsage: "system.json",
			Action:    cmd.Surfaces,
		},
	}

	app.Run(os.Args)
}
