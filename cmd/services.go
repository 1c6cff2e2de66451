package cmd

import (
	"fmt"

	"github.com/hmectl/hmectl/cmd/common"
	"github.com/urfave/cli"
)

func services(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cctx, stop := commandContext()
	defer stop()
	session, err := openSession(cctx, ctx, "services")
	if err != nil {
		return err
	}
	dir := session.Services()
	txt := "Web services of the account:"
	txt += "\n\n------------------------------------------------------------------------"
	txt += "\n|          Service          |  Status  |              URL              |"
	txt += "\n|---------------------------|----------|-------------------------------|"
	for _, name := range dir.Names() {
		svc := dir[name]
		status := svc.GetStatus()
		if status == "" {
			status = "-"
		}
		txt += fmt.Sprintf("\n| %s | %s | %s |",
			common.Fit(name, 25), common.Fit(status, 8), common.Fit(svc.GetURL(), 29))
	}
	txt += "\n------------------------------------------------------------------------"
	fmt.Println(txt)
	return nil
}
