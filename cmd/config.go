package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hmectl/hmectl/cmd/common"
	"github.com/hmectl/hmectl/internal/config"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

var (
	initConfig bool

	configFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "init",
			Usage:       "write the effective settings to the config file if it does not exist",
			Destination: &initConfig,
		},
	}
)

var errConfigExists = errors.New("config file already exists")

func showConfig(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	path := configPath
	if path == "" {
		path = filepath.Join(rt.dir, config.FileName)
	}
	if initConfig {
		ok, err := afero.Exists(rt.fs, path)
		if err != nil {
			return common.RuntimeErr(ctx, "config", "stat", err)
		}
		if ok {
			return common.RuntimeErr(ctx, "config", "init", fmt.Errorf("%w: %s", errConfigExists, path))
		}
		if err := config.Save(rt.fs, path, rt.cfg); err != nil {
			return common.RuntimeErr(ctx, "config", "init", err)
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}
	c := rt.cfg
	fmt.Printf("config file:   %s\n", path)
	fmt.Printf("setup url:     %s\n", c.SetupURL)
	fmt.Printf("user agent:    %s\n", c.UserAgent)
	fmt.Printf("proxy:         %s\n", orNone(c.Proxy))
	fmt.Printf("timeout:       %s\n", c.Timeout)
	fmt.Printf("default label: %s\n", orNone(c.DefaultLabel))
	fmt.Printf("default note:  %s\n", orNone(c.DefaultNote))
	fmt.Printf("browser:       %s\n", orNone(c.Browser))
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
