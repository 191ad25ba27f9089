package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/pretty"
	"github.com/urfave/cli/v2"

	"github.com/cybergodev/hsjwt"
	"github.com/cybergodev/hsjwt/claims"
	"github.com/cybergodev/hsjwt/internal/core"
)

// SignCommand returns the sign command.
func SignCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign a token from name=value claims",
		Flags: []cli.Flag{
			secretFlag(),
			algFlag("HS256"),
			&cli.StringFlag{
				Name:    "issuer",
				Aliases: []string{"i"},
				Usage:   "Issuer (iss), written as the first claim",
			},
			&cli.StringSliceFlag{
				Name:  "claim",
				Usage: "Claim as name=value; integers and true/false keep their JSON type, quote to force a string",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Add iat and exp claims for this lifetime",
			},
		},
		Action: signToken,
	}
}

func signToken(c *cli.Context) error {
	key, err := resolveSecret(c)
	if err != nil {
		return err
	}
	alg, err := resolveAlgorithm(c)
	if err != nil {
		return err
	}

	tok, err := hsjwt.NewToken(alg)
	if err != nil {
		return err
	}

	if iss := c.String("issuer"); iss != "" {
		if err := tok.AddClaim("iss", claims.String(iss)); err != nil {
			return err
		}
	}
	for _, raw := range c.StringSlice("claim") {
		name, value, err := parseClaim(raw)
		if err != nil {
			return err
		}
		if err := tok.AddClaim(name, value); err != nil {
			return err
		}
	}
	if ttl := c.Duration("ttl"); ttl > 0 {
		if err := hsjwt.AddLifetime(tok.Payload, time.Now(), ttl); err != nil {
			return err
		}
	}

	signed, err := tok.Sign(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, signed)
	return nil
}

// parseClaim splits "name=value". Integers and true/false become typed
// values; a value wrapped in double quotes is always a string.
func parseClaim(raw string) (string, claims.Value, error) {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return "", claims.Value{}, fmt.Errorf("invalid claim %q: want name=value", raw)
	}

	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return name, claims.String(value[1 : len(value)-1]), nil
	}
	switch value {
	case "true":
		return name, claims.Bool(true), nil
	case "false":
		return name, claims.Bool(false), nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return name, claims.Int(n), nil
	}
	return name, claims.String(value), nil
}

// VerifyCommand returns the verify command.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify a token signature",
		ArgsUsage: "[TOKEN]",
		Flags: []cli.Flag{
			secretFlag(),
			algFlag(""),
		},
		Action: verifyToken,
	}
}

func verifyToken(c *cli.Context) error {
	key, err := resolveSecret(c)
	if err != nil {
		return err
	}
	alg, err := resolveAlgorithm(c)
	if err != nil {
		return err
	}
	token, err := input(c)
	if err != nil {
		return err
	}

	if _, err := core.Check(string(token), key, alg); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "valid")
	return nil
}

// InspectCommand returns the inspect command.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header and payload of a token without verifying it",
		ArgsUsage: "[TOKEN]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "color",
				Usage: "Colorize the JSON output",
			},
		},
		Action: inspectToken,
	}
}

func inspectToken(c *cli.Context) error {
	token, err := input(c)
	if err != nil {
		return err
	}
	parts, err := core.Split(string(token))
	if err != nil {
		return err
	}

	format := func(b []byte) []byte {
		out := pretty.Pretty(b)
		if c.Bool("color") {
			out = pretty.Color(out, nil)
		}
		return out
	}

	w := c.App.Writer
	fmt.Fprintln(w, "header:")
	w.Write(format(parts.Header))
	fmt.Fprintln(w, "payload:")
	w.Write(format(parts.Payload))
	fmt.Fprintf(w, "signature: %s\n", parts.Signature)
	return nil
}
