package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hmectl/hmectl/cmd/common"
	"github.com/hmectl/hmectl/pkg/hme"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
)

var (
	count int

	generateFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "count, n",
			Usage:       "number of addresses",
			Value:       1,
			Destination: &count,
		},
	}

	metadataFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "label, l",
			Usage: "label shown next to the address",
		},
		cli.StringFlag{
			Name:  "note",
			Usage: "free-form note kept with the address",
		},
	}
)

// progressOutput receives the batch progress bar.
var progressOutput io.Writer = os.Stderr

var errBadCount = errors.New("count must be at least 1")

func generate(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if count < 1 {
		return common.PrintErrWithCmdHelp(ctx, errBadCount)
	}
	cctx, stop := commandContext()
	defer stop()
	m, err := openManager(cctx, ctx, "generate")
	if err != nil {
		return err
	}
	addrs, err := runBatch(count, "Generating", func() (string, error) {
		return m.Generate(cctx)
	})
	printAddresses(addrs)
	if err != nil {
		return common.RuntimeErr(ctx, "generate", "generate", err)
	}
	return nil
}

func reserve(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if count < 1 {
		return common.PrintErrWithCmdHelp(ctx, errBadCount)
	}
	label, note := metadata(ctx)
	if label == "" {
		return common.PrintErrWithCmdHelp(ctx, hme.ErrEmptyLabel)
	}
	cctx, stop := commandContext()
	defer stop()
	m, err := openManager(cctx, ctx, "reserve")
	if err != nil {
		return err
	}
	addrs, err := runBatch(count, "Reserving", func() (string, error) {
		return m.GenerateAndClaim(cctx, label, note)
	})
	printAddresses(addrs)
	if err != nil {
		var oerr *hme.OrphanedAddressError
		if errors.As(err, &oerr) {
			fmt.Printf("Generated %s but could not reserve it, run 'hmectl claim %s' to retry\n", oerr.Address, oerr.Address)
		}
		return common.RuntimeErr(ctx, "reserve", "claim", err)
	}
	return nil
}

// metadata returns the label and note flags, falling back to the
// configured defaults.
func metadata(ctx *cli.Context) (label, note string) {
	label, note = ctx.String("label"), ctx.String("note")
	if label == "" {
		label = rt.cfg.DefaultLabel
	}
	if !ctx.IsSet("note") {
		note = rt.cfg.DefaultNote
	}
	return label, note
}

// runBatch calls fn n times, stopping at the first error. A progress bar
// is drawn when more than one item is requested.
func runBatch(n int, name string, fn func() (string, error)) ([]string, error) {
	out := make([]string, 0, n)
	if n == 1 {
		s, err := fn()
		if err != nil {
			return out, err
		}
		return append(out, s), nil
	}
	p := mpb.New(mpb.WithOutput(progressOutput), mpb.WithWidth(40))
	bar := common.InitBar(p, name, n)
	var err error
	for range n {
		var s string
		s, err = fn()
		if err != nil {
			bar.Abort(false)
			break
		}
		out = append(out, s)
		bar.Increment()
	}
	p.Wait()
	return out, err
}

func printAddresses(addrs []string) {
	for _, a := range addrs {
		fmt.Println(a)
	}
}

func claim(ctx *cli.Context) error {
	address := ctx.Args().First()
	switch address {
	case "":
		return common.PrintErrWithCmdHelp(ctx, hme.ErrEmptyAddress)
	case "help":
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	label, note := metadata(ctx)
	if label == "" {
		return common.PrintErrWithCmdHelp(ctx, hme.ErrEmptyLabel)
	}
	cctx, stop := commandContext()
	defer stop()
	m, err := openManager(cctx, ctx, "claim")
	if err != nil {
		return err
	}
	a, err := m.Claim(cctx, address, label, note)
	if err != nil {
		return common.RuntimeErr(ctx, "claim", "claim", err)
	}
	fmt.Printf("Reserved %s (%s)\n", a.Address, a.AnonymousID)
	return nil
}

