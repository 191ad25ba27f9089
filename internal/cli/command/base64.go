package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cybergodev/hsjwt/internal/codec"
)

// Base64Command returns the base64 subcommand group.
func Base64Command() *cli.Command {
	return &cli.Command{
		Name:  "base64",
		Usage: "Encode or decode Base64",
		Subcommands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "Encode the input",
				ArgsUsage: "[INPUT]",
				Flags:     []cli.Flag{urlFlag()},
				Action:    base64Encode,
			},
			{
				Name:      "decode",
				Usage:     "Decode the input",
				ArgsUsage: "[INPUT]",
				Flags:     []cli.Flag{urlFlag()},
				Action:    base64Decode,
			},
		},
	}
}

func urlFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "Use the unpadded URL-safe alphabet",
	}
}

func encodingFor(c *cli.Context) *codec.Encoding {
	if c.Bool("url") {
		return codec.URL
	}
	return codec.Std
}

func base64Encode(c *cli.Context) error {
	data, err := input(c)
	if err != nil {
		return err
	}
	out, err := encodingFor(c).Encode(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}

func base64Decode(c *cli.Context) error {
	data, err := input(c)
	if err != nil {
		return err
	}
	out, err := encodingFor(c).Decode(string(data))
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(out)
	return err
}
