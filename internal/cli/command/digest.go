package command

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/cybergodev/hsjwt/internal/codec"
	"github.com/cybergodev/hsjwt/internal/sha2"
	"github.com/cybergodev/hsjwt/internal/signing"
)

// HashCommand returns the hash command.
func HashCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash",
		Usage:     "Print the SHA-2 digest of the input in hex",
		ArgsUsage: "[INPUT]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "alg",
				Usage: "Hash function: sha256, sha384 or sha512",
				Value: "sha256",
			},
		},
		Action: hashInput,
	}
}

func hashInput(c *cli.Context) error {
	data, err := input(c)
	if err != nil {
		return err
	}

	var sum []byte
	switch strings.ToLower(c.String("alg")) {
	case "sha256":
		d := sha2.Sum256(data)
		sum = d[:]
	case "sha384":
		d := sha2.Sum384(data)
		sum = d[:]
	case "sha512":
		d := sha2.Sum512(data)
		sum = d[:]
	default:
		return fmt.Errorf("unknown hash function %q", c.String("alg"))
	}

	fmt.Fprintln(c.App.Writer, hex.EncodeToString(sum))
	return nil
}

// HMACCommand returns the hmac command.
func HMACCommand() *cli.Command {
	return &cli.Command{
		Name:      "hmac",
		Usage:     "Print the HMAC of the input",
		ArgsUsage: "[INPUT]",
		Flags: []cli.Flag{
			secretFlag(),
			algFlag("HS256"),
			&cli.BoolFlag{
				Name:  "hex",
				Usage: "Print hex instead of unpadded base64url",
			},
		},
		Action: hmacInput,
	}
}

func hmacInput(c *cli.Context) error {
	key, err := resolveSecret(c)
	if err != nil {
		return err
	}
	alg, err := signing.Lookup(strings.ToUpper(c.String("alg")))
	if err != nil {
		return err
	}
	data, err := input(c)
	if err != nil {
		return err
	}

	mac, err := signing.HMAC(alg, key, data)
	if err != nil {
		return err
	}

	if c.Bool("hex") {
		fmt.Fprintln(c.App.Writer, hex.EncodeToString(mac))
		return nil
	}
	out, err := codec.URL.Encode(mac)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}
