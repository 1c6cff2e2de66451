package cmd

import (
	"fmt"
	"runtime"
	"time"

	"github.com/hmectl/hmectl/cmd/common"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var (
	configPath string
	proxyURL   string
	setupURL   string
	timeout    time.Duration
	debug      bool
	logFile    string

	globalFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "config",
			Usage:       "path of the config file (default: <config dir>/config.toml)",
			Destination: &configPath,
		},
		cli.StringFlag{
			Name:        "proxy, x",
			Usage:       "http, https or socks5 proxy URL",
			Destination: &proxyURL,
		},
		cli.StringFlag{
			Name:        "setup-url",
			Usage:       "iCloud setup service base URL",
			Destination: &setupURL,
			Hidden:      true,
		},
		cli.DurationFlag{
			Name:        "timeout, t",
			Usage:       "timeout of each request, 0 for the default",
			Destination: &timeout,
		},
		cli.BoolFlag{
			Name:        "debug, d",
			Usage:       "log to stderr",
			Destination: &debug,
		},
		cli.StringFlag{
			Name:        "log-file",
			Usage:       "append logs to this file",
			Destination: &logFile,
		},
	}
)

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:                  "hmectl",
		HelpName:              "hmectl",
		Usage:                 "Manage iCloud Hide My Email addresses.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "hmectl [global options] <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:               "login",
				Usage:              "validate and store the cookies of an iCloud session",
				Action:             withEnv(login),
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        LoginDescription,
				Flags:              loginFlags,
			},
			{
				Name:               "logout",
				Usage:              "delete the stored cookies",
				Action:             withEnv(logout),
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        LogoutDescription,
				Flags:              logoutFlags,
			},
			{
				Name:               "services",
				Usage:              "list the iCloud web services of the account",
				Action:             withEnv(services),
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ServicesDescription,
			},
			{
				Name:                   "generate",
				Aliases:                []string{"g"},
				Usage:                  "generate addresses without reserving them",
				Action:                 withEnv(generate),
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            GenerateDescription,
				UseShortOptionHandling: true,
				Flags:                  generateFlags,
			},
			{
				Name:               "claim",
				Usage:              "reserve a generated address",
				ArgsUsage:          "ADDRESS",
				UsageText:          "claim ADDRESS --label LABEL [--note NOTE]",
				Action:             withEnv(claim),
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ClaimDescription,
				Flags:              metadataFlags,
			},
			{
				Name:                   "reserve",
				Aliases:                []string{"r"},
				Usage:                  "generate and reserve addresses",
				Action:                 withEnv(reserve),
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            ReserveDescription,
				UseShortOptionHandling: true,
				Flags:                  append(append([]cli.Flag{}, metadataFlags...), generateFlags...),
			},
			{
				Name:                   "list",
				Aliases:                []string{"l"},
				Usage:                  "list the addresses of the account",
				Action:                 withEnv(list),
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            ListDescription,
				UseShortOptionHandling: true,
				Flags:                  lsFlags,
			},
			{
				Name:               "update",
				Usage:              "change the label and note of an address",
				UsageText:          "update ADDRESS --label LABEL [--note NOTE]",
				Action:             withEnv(update),
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        UpdateDescription,
				Flags:              metadataFlags,
			},
			{
				Name:               "deactivate",
				Usage:              "stop forwarding for an address",
				UsageText:          "deactivate ADDRESS",
				Action:             withEnv(deactivate),
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DeactivateDescription,
			},
			{
				Name:               "reactivate",
				Usage:              "resume forwarding for an address",
				UsageText:          "reactivate ADDRESS",
				Action:             withEnv(reactivate),
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ReactivateDescription,
			},
			{
				Name:               "delete",
				Usage:              "delete a deactivated address",
				UsageText:          "delete ADDRESS [--force]",
				Action:             withEnv(remove),
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DeleteDescription,
				Flags:              deleteFlags,
			},
			{
				Name:               "config",
				Usage:              "show or initialize the settings",
				Action:             withEnv(showConfig),
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ConfigDescription,
				Flags:              configFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of hmectl",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
