package cmd

import (
	"fmt"
	"sort"

	"github.com/hmectl/hmectl/cmd/common"
	"github.com/hmectl/hmectl/pkg/hme"
	"github.com/urfave/cli"
)

var (
	activeOnly bool

	lsFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "label",
			Usage: "only list addresses with this label",
		},
		cli.BoolFlag{
			Name:        "active, a",
			Usage:       "only list addresses that forward mail (default: false)",
			Destination: &activeOnly,
		},
	}
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cctx, stop := commandContext()
	defer stop()
	m, err := openManager(cctx, ctx, "list")
	if err != nil {
		return err
	}
	res, err := m.List(cctx)
	if err != nil {
		return common.RuntimeErr(ctx, "list", "get-list", err)
	}
	items := res.HMEEmails
	if label := ctx.String("label"); label != "" {
		items = res.Find(label)
	}
	var shown []hme.ListedAddress
	for _, a := range items {
		if activeOnly && !a.IsActive {
			continue
		}
		shown = append(shown, a)
	}
	if len(shown) == 0 {
		fmt.Println("hmectl: no addresses found")
		return nil
	}
	// newest first
	sort.SliceStable(shown, func(i, j int) bool {
		return shown[i].CreateTimestamp > shown[j].CreateTimestamp
	})

	txt := fmt.Sprintf("Addresses forwarding to %s:", res.SelectedForwardTo)
	txt += "\n\n---------------------------------------------------------------------------------"
	txt += "\n|Num|            Address            |        Label        | Active |  Created   |"
	txt += "\n|---|-------------------------------|---------------------|--------|------------|"
	for i, a := range shown {
		active := "no"
		if a.IsActive {
			active = "yes"
		}
		txt += fmt.Sprintf("\n|%s| %s | %s | %s | %s |",
			common.Beaut(fmt.Sprint(i+1), 3),
			common.Fit(a.Address.Address, 29),
			common.Fit(a.Label, 19),
			common.Beaut(active, 6),
			a.CreatedAt().Format("2006-01-02"),
		)
	}
	txt += "\n---------------------------------------------------------------------------------"
	fmt.Println(txt)
	return nil
}
