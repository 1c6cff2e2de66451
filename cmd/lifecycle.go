package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hmectl/hmectl/cmd/common"
	"github.com/hmectl/hmectl/pkg/hme"
	"github.com/urfave/cli"
)

var (
	forceDelete bool

	deleteFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "force, f",
			Usage:       "do not ask for confirmation",
			Destination: &forceDelete,
		},
	}
)

var errAddressNotFound = errors.New("address not found")

// lookup finds an address of the account by e-mail or anonymous id.
func lookup(cctx context.Context, m *hme.Manager, key string) (*hme.ListedAddress, error) {
	res, err := m.List(cctx)
	if err != nil {
		return nil, err
	}
	a, ok := res.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errAddressNotFound, key)
	}
	return a, nil
}

// resolveID maps an e-mail to its anonymous id. Anything else is taken
// to be an anonymous id already.
func resolveID(cctx context.Context, m *hme.Manager, key string) (string, error) {
	if !strings.Contains(key, "@") {
		return key, nil
	}
	a, err := lookup(cctx, m, key)
	if err != nil {
		return "", err
	}
	return a.AnonymousID, nil
}

func update(ctx *cli.Context) error {
	key := ctx.Args().First()
	switch key {
	case "":
		return common.PrintErrWithCmdHelp(ctx, hme.ErrEmptyAddress)
	case "help":
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	label := ctx.String("label")
	if label == "" {
		return common.PrintErrWithCmdHelp(ctx, hme.ErrEmptyLabel)
	}
	cctx, stop := commandContext()
	defer stop()
	m, err := openManager(cctx, ctx, "update")
	if err != nil {
		return err
	}
	a, err := lookup(cctx, m, key)
	if err != nil {
		return common.RuntimeErr(ctx, "update", "lookup", err)
	}
	note := a.Note
	if ctx.IsSet("note") {
		note = ctx.String("note")
	}
	if err := m.UpdateMetadata(cctx, a.AnonymousID, label, note); err != nil {
		return common.RuntimeErr(ctx, "update", "update-metadata", err)
	}
	fmt.Printf("Updated %s\n", a.Address.Address)
	return nil
}

func deactivate(ctx *cli.Context) error {
	return lifecycle(ctx, "deactivate", "Deactivated", (*hme.Manager).Deactivate)
}

func reactivate(ctx *cli.Context) error {
	return lifecycle(ctx, "reactivate", "Reactivated", (*hme.Manager).Reactivate)
}

func remove(ctx *cli.Context) error {
	key := ctx.Args().First()
	if key != "" && key != "help" && !confirm(command("delete"), forceDelete) {
		return nil
	}
	return lifecycle(ctx, "delete", "Deleted", (*hme.Manager).Delete)
}

func lifecycle(ctx *cli.Context, name, done string, fn func(*hme.Manager, context.Context, string) error) error {
	key := ctx.Args().First()
	switch key {
	case "":
		return common.PrintErrWithCmdHelp(ctx, hme.ErrEmptyAddress)
	case "help":
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cctx, stop := commandContext()
	defer stop()
	m, err := openManager(cctx, ctx, name)
	if err != nil {
		return err
	}
	id, err := resolveID(cctx, m, key)
	if err != nil {
		return common.RuntimeErr(ctx, name, "lookup", err)
	}
	if err := fn(m, cctx, id); err != nil {
		return common.RuntimeErr(ctx, name, name, err)
	}
	fmt.Printf("%s %s\n", done, key)
	return nil
}
