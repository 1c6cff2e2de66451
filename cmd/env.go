package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/hmectl/hmectl/cmd/common"
	"github.com/hmectl/hmectl/internal/config"
	"github.com/hmectl/hmectl/pkg/logger"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

// runtimeEnv is what the commands share during one run.
type runtimeEnv struct {
	fs  afero.Fs
	dir string
	cfg config.Config
	log logger.Logger
}

var rt = &runtimeEnv{fs: afero.NewOsFs(), log: logger.NewNopLogger(), cfg: config.Default()}

// Seams for tests.
var (
	appFs  afero.Fs = afero.NewOsFs()
	getenv          = os.Getenv
)

// setup resolves the config directory, the settings and the logger.
func setup(ctx *cli.Context) error {
	dir, err := config.Dir(getenv)
	if err != nil {
		return common.RuntimeErr(ctx, "config", "dir", err)
	}
	path, required := configPath, configPath != ""
	if !required {
		path = filepath.Join(dir, config.FileName)
	}
	cfg, err := config.Load(appFs, path, required)
	if err != nil {
		return common.RuntimeErr(ctx, "config", "load", err)
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return common.RuntimeErr(ctx, "config", "env", err)
	}
	if proxyURL != "" {
		cfg.Proxy = proxyURL
	}
	if setupURL != "" {
		cfg.SetupURL = setupURL
	}
	if timeout != 0 {
		cfg.Timeout = timeout
	}

	l, err := newLogger(debug, logFile)
	if err != nil {
		return common.RuntimeErr(ctx, "config", "log-file", err)
	}
	rt = &runtimeEnv{fs: appFs, dir: dir, cfg: cfg, log: l}
	l.Info("hmectl: config dir %s", dir)
	return nil
}

func teardown() {
	if err := rt.log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "hmectl: close log: %v\n", err)
	}
}

// withEnv runs setup before action and closes the logger after it.
func withEnv(action func(*cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		if err := setup(ctx); err != nil {
			return err
		}
		defer teardown()
		return action(ctx)
	}
}

func newLogger(debug bool, file string) (logger.Logger, error) {
	var ls []logger.Logger
	if debug {
		ls = append(ls, logger.NewConsoleLogger(os.Stderr, "hmectl"))
	}
	if file != "" {
		fl, err := logger.NewFileLogger(file)
		if err != nil {
			return nil, err
		}
		ls = append(ls, fl)
	}
	switch len(ls) {
	case 0:
		return logger.NewNopLogger(), nil
	case 1:
		return ls[0], nil
	}
	return logger.NewMultiLogger(ls...), nil
}

// commandContext is cancelled on interrupt.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
