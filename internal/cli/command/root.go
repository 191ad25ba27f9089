// Package command provides the command definitions for the hsjwt tool.
//
// It uses urfave/cli/v2; every command writes to the App's Writer and
// reads input from its arguments or, when none is given, the App's Reader.
package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/cybergodev/hsjwt"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "hsjwt",
		Usage:   "Sign, verify and inspect HMAC compact tokens",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SignCommand(),
			VerifyCommand(),
			InspectCommand(),
			HashCommand(),
			HMACCommand(),
			Base64Command(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file supplying secret_key and signing_method",
			EnvVars: []string{"HSJWT_CONFIG"},
		},
	}
}

func secretFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "secret",
		Aliases: []string{"s"},
		Usage:   "HMAC secret",
		EnvVars: []string{"HSJWT_SECRET_KEY"},
	}
}

func algFlag(value string) cli.Flag {
	return &cli.StringFlag{
		Name:    "alg",
		Aliases: []string{"a"},
		Usage:   "Algorithm: HS256, HS384 or HS512",
		Value:   value,
	}
}

// resolveSecret returns --secret, falling back to the configuration file.
func resolveSecret(c *cli.Context) ([]byte, error) {
	if s := c.String("secret"); s != "" {
		return []byte(s), nil
	}
	if path := c.String("config"); path != "" {
		cfg, err := hsjwt.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		return []byte(cfg.SecretKey), nil
	}
	return nil, fmt.Errorf("no secret: use --secret, HSJWT_SECRET_KEY or --config")
}

// resolveAlgorithm returns --alg, or the configured signing method when the
// flag is unset and a configuration file is given.
func resolveAlgorithm(c *cli.Context) (hsjwt.Algorithm, error) {
	name := c.String("alg")
	if !c.IsSet("alg") && c.String("config") != "" {
		cfg, err := hsjwt.LoadConfig(c.String("config"))
		if err != nil {
			return hsjwt.Algorithm{}, err
		}
		return cfg.SigningMethod.Algorithm()
	}
	if name == "" {
		return hsjwt.Algorithm{}, nil
	}
	return hsjwt.SigningMethod(strings.ToUpper(name)).Algorithm()
}

// input returns the first argument, or everything on the App's Reader when
// there are no arguments. A single trailing newline is dropped.
func input(c *cli.Context) ([]byte, error) {
	if c.Args().Present() {
		return []byte(c.Args().First()), nil
	}
	if c.App.Reader == nil {
		return nil, fmt.Errorf("no input")
	}
	b, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return trimNewline(b), nil
}

func trimNewline(b []byte) []byte {
	n := len(b)
	if n > 0 && b[n-1] == '\n' {
		n--
		if n > 0 && b[n-1] == '\r' {
			n--
		}
	}
	return b[:n]
}
