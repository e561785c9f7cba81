// nearcodec is a CLI which encodes and decodes NEAR transactions and runs the codec service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/polywrap/near-engine/pkg/crypto"
	"github.com/polywrap/near-engine/pkg/engine"
	"github.com/polywrap/near-engine/pkg/engine/config"
	"github.com/polywrap/near-engine/pkg/log"
	"github.com/polywrap/near-engine/pkg/near"
)

func main() {
	logger, err := log.NewDefaultProductionLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck
	app := newApp(logger)
	if err := app.Run(os.Args); err != nil {
		logger.Errorf("Fail running application with %s", err)
		os.Exit(1)
	}
}

func newApp(logger log.Logger) *cli.App {
	inputFlag := &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Path to transaction JSON, - for stdin",
		Value:   stdinPath,
	}
	return &cli.App{
		Name:  "nearcodec",
		Usage: "NEAR transaction codec",
		Commands: []*cli.Command{
			{
				Name:  "encode",
				Usage: "Encode transaction JSON into borsh bytes",
				Flags: []cli.Flag{
					inputFlag,
					&cli.BoolFlag{
						Name:  "base64",
						Usage: "Print base64 instead of hex",
					},
				},
				Action: func(c *cli.Context) error {
					input, err := readInput(c.String("input"), c.App.Reader)
					if err != nil {
						return err
					}
					return encodeTransaction(c.App.Writer, input, c.Bool("base64"))
				},
			},
			{
				Name:      "decode",
				Usage:     "Decode hex or base64 borsh bytes into transaction JSON",
				ArgsUsage: "<bytes>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "allow-trailing",
						Usage: "Ignore bytes after the transaction",
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("decode requires exactly one argument")
					}
					return decodeTransaction(c.App.Writer, c.Args().First(), c.Bool("allow-trailing"))
				},
			},
			{
				Name:  "hash",
				Usage: "Print the hash of transaction JSON",
				Flags: []cli.Flag{inputFlag},
				Action: func(c *cli.Context) error {
					input, err := readInput(c.String("input"), c.App.Reader)
					if err != nil {
						return err
					}
					return hashTransaction(c.App.Writer, input)
				},
			},
			{
				Name:  "amount",
				Usage: "Convert between NEAR and yoctoNEAR",
				Subcommands: []*cli.Command{
					{
						Name:      "format",
						Usage:     "Format yoctoNEAR as NEAR",
						ArgsUsage: "<yocto>",
						Action: func(c *cli.Context) error {
							formatted, err := near.FormatNearAmount(c.Args().First())
							if err != nil {
								return err
							}
							_, err = fmt.Fprintln(c.App.Writer, formatted)
							return err
						},
					},
					{
						Name:      "parse",
						Usage:     "Parse NEAR into yoctoNEAR",
						ArgsUsage: "<near>",
						Action: func(c *cli.Context) error {
							parsed, err := near.ParseNearAmount(c.Args().First())
							if err != nil {
								return err
							}
							_, err = fmt.Fprintln(c.App.Writer, parsed)
							return err
						},
					},
				},
			},
			{
				Name:  "key",
				Usage: "Derive public key from passphrase",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "passphrase",
						Aliases:  []string{"p"},
						Usage:    "BIP39 passphrase",
						EnvVars:  []string{"NEAR_PASSPHRASE"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "path",
						Usage: "SLIP-10 derivation path",
						Value: crypto.NearDerivationPath,
					},
				},
				Action: func(c *cli.Context) error {
					return derivePublicKey(c.App.Writer, c.String("passphrase"), c.String("path"))
				},
			},
			{
				Name:  "serve",
				Usage: "Start JSON RPC codec service",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to engine config (JSON or YAML)",
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Override RPC port",
					},
				},
				Action: func(c *cli.Context) error {
					engineConfig := config.Default()
					if path := c.String("config"); path != "" {
						loaded, err := config.Load(path)
						if err != nil {
							return err
						}
						engineConfig = loaded
					}
					if c.IsSet("port") {
						engineConfig.RPC.Port = c.Int("port")
					}
					return serve(c.Context, logger, engineConfig)
				},
			},
		},
	}
}

func serve(ctx context.Context, logger log.Logger, engineConfig *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	codecEngine := engine.NewEngine(engineConfig, nil)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer stop()
		return codecEngine.Start()
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("Closing engine")
		codecEngine.Stop()
		return nil
	})
	return group.Wait()
}
