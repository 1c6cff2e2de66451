package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hmectl/hmectl/cmd/common"
	"github.com/hmectl/hmectl/internal/cookies"
	"github.com/hmectl/hmectl/pkg/credman"
	"github.com/hmectl/hmectl/pkg/icloud"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

var (
	loginFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "cookie, c",
			Usage: "the Cookie header of a signed-in icloud.com request",
		},
		cli.StringFlag{
			Name:  "from-browser, b",
			Usage: `import cookies from a browser: "auto" or the path of a cookie store`,
		},
	}

	logoutFlags = []cli.Flag{
		cli.BoolFlag{
			Name:  "forget-key",
			Usage: "also delete the cookie encryption key",
		},
	}
)

// Terminal seams for tests.
var (
	stdin        io.Reader = os.Stdin
	stdinFd                = func() int { return int(os.Stdin.Fd()) }
	isTerminal             = term.IsTerminal
	readPassword           = term.ReadPassword
)

func login(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cs, source, err := loginCookies(ctx)
	if err != nil {
		return common.RuntimeErr(ctx, "login", "read-cookies", err)
	}
	client, err := newClient(cs)
	if err != nil {
		return common.RuntimeErr(ctx, "login", "new-client", err)
	}
	cctx, stop := commandContext()
	defer stop()
	session, err := client.Validate(cctx)
	if err != nil {
		return common.RuntimeErr(ctx, "login", "validate", err)
	}

	store, err := getCookieStore(true)
	if err != nil {
		return common.RuntimeErr(ctx, "login", "cookie-key", err)
	}
	stored := client.Cookies()
	if err := store.Save(stored, source); err != nil {
		return common.RuntimeErr(ctx, "login", "store", err)
	}
	fmt.Printf("Logged in, Hide My Email is available at %s\n", session.BaseURL())
	fmt.Printf("Stored %d cookies from %s in %s\n", len(stored), source, store.Path())
	return nil
}

// loginCookies picks the cookie source: --cookie, --from-browser,
// $HMECTL_COOKIE, the configured browser, then a prompt.
func loginCookies(ctx *cli.Context) (icloud.Cookies, string, error) {
	switch {
	case ctx.String("cookie") != "":
		cs, err := icloud.ParseCookies(ctx.String("cookie"))
		return cs, "manual", err
	case ctx.String("from-browser") != "":
		return importCookies(ctx.String("from-browser"))
	case getenv(cookieEnv) != "":
		cs, err := icloud.ParseCookies(getenv(cookieEnv))
		return cs, "env", err
	case rt.cfg.Browser != "":
		return importCookies(rt.cfg.Browser)
	}
	header, err := promptCookie()
	if err != nil {
		return nil, "", err
	}
	cs, err := icloud.ParseCookies(header)
	return cs, "prompt", err
}

func importCookies(path string) (icloud.Cookies, string, error) {
	res, err := cookies.NewImporter(rt.log).Import(path)
	if err != nil {
		return nil, "", err
	}
	fmt.Printf("Imported %d icloud.com cookies from %s\n", len(res.Cookies), res.Source.Browser)
	return res.ICloud(), res.Source.Browser, nil
}

// promptCookie reads the Cookie header without echo on a terminal, or a
// single line from a pipe.
func promptCookie() (string, error) {
	fd := stdinFd()
	if isTerminal(fd) {
		fmt.Print("Paste the Cookie header of a signed-in icloud.com request: ")
		b, err := readPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func logout(ctx *cli.Context) error {
	if err := credman.Remove(rt.fs, rt.dir); err != nil {
		return common.RuntimeErr(ctx, "logout", "remove", err)
	}
	if ctx.Bool("forget-key") && getenv(cookieKeyEnv) == "" {
		if err := keyProvider().DeleteKey(); err != nil {
			return common.RuntimeErr(ctx, "logout", "forget-key", err)
		}
	}
	fmt.Println("Logged out, stored cookies deleted")
	return nil
}
