package cmd

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/hmectl/hmectl/cmd/common"
	"github.com/hmectl/hmectl/pkg/credman"
	"github.com/hmectl/hmectl/pkg/credman/keyring"
	"github.com/hmectl/hmectl/pkg/hme"
	"github.com/hmectl/hmectl/pkg/icloud"
	"github.com/urfave/cli"
)

const (
	cookieKeyEnv  = "HMECTL_COOKIE_KEY"
	passphraseEnv = "HMECTL_PASSPHRASE"
	cookieEnv     = "HMECTL_COOKIE"
)

var newKeyring = func() keyring.Provider { return keyring.NewKeyring() }

// keyProvider picks where the cookie key lives: a passphrase when one is
// set, the OS keyring otherwise with a key file as fallback.
func keyProvider() keyring.Provider {
	if pass := getenv(passphraseEnv); pass != "" {
		return keyring.NewPassphraseKeyStore(rt.fs, rt.dir, pass)
	}
	return keyring.WithFallback(newKeyring(), keyring.NewFileKeyStore(rt.fs, rt.dir))
}

// cookieKey returns the cookie store key. A new key is only created when
// create is set; otherwise a missing key means nothing was stored yet.
func cookieKey(create bool) ([]byte, error) {
	if keyHex := getenv(cookieKeyEnv); keyHex != "" {
		return keyring.ParseHexKey(keyHex)
	}
	kp := keyProvider()
	key, err := kp.GetKey()
	if err == nil {
		return key, nil
	}
	if !create {
		rt.log.Warning("hmectl: no cookie key: %v", err)
		return nil, credman.ErrNoCookies
	}
	return kp.SetKey()
}

func getCookieStore(create bool) (*credman.CookieStore, error) {
	key, err := cookieKey(create)
	if err != nil {
		return nil, err
	}
	return credman.NewCookieStore(rt.fs, rt.dir, key)
}

type storedCookies struct {
	cookies icloud.Cookies
	source  string
	// store is nil when the cookies did not come from the store.
	store *credman.CookieStore
}

// loadCookies takes the session from $HMECTL_COOKIE or the cookie store.
func loadCookies() (*storedCookies, error) {
	if header := getenv(cookieEnv); header != "" {
		cs, err := icloud.ParseCookies(header)
		if err != nil {
			return nil, err
		}
		return &storedCookies{cookies: cs, source: "env"}, nil
	}
	store, err := getCookieStore(false)
	if err != nil {
		return nil, err
	}
	rec, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &storedCookies{cookies: rec.Cookies, source: rec.Source, store: store}, nil
}

func newClient(cs icloud.Cookies) (*icloud.Client, error) {
	hc, err := icloud.NewHTTPClient(icloud.TransportOpts{
		Proxy:   rt.cfg.Proxy,
		Timeout: rt.cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return icloud.New(cs,
		icloud.WithHTTPClient(hc),
		icloud.WithSetupURL(rt.cfg.SetupURL),
		icloud.WithUserAgent(rt.cfg.UserAgent),
		icloud.WithLogger(rt.log),
	)
}

// openSession validates the stored session. Cookies rotated by the
// server are written back to the store.
func openSession(cctx context.Context, ctx *cli.Context, name string) (*icloud.Session, error) {
	sc, err := loadCookies()
	if err != nil {
		return nil, common.RuntimeErr(ctx, name, "load-cookies", err)
	}
	client, err := newClient(sc.cookies)
	if err != nil {
		return nil, common.RuntimeErr(ctx, name, "new-client", err)
	}
	session, err := client.Validate(cctx)
	if err != nil {
		var serr *icloud.StatusError
		if errors.As(err, &serr) && (serr.StatusCode == http.StatusUnauthorized || serr.StatusCode == http.StatusMisdirectedRequest) {
			rt.log.Warning("hmectl: session rejected, login again")
		}
		return nil, common.RuntimeErr(ctx, name, "validate", err)
	}
	if rotated := client.Cookies(); sc.store != nil && !slices.Equal(rotated, sc.cookies) {
		if err := sc.store.Save(rotated, sc.source); err != nil {
			rt.log.Warning("hmectl: could not store refreshed cookies: %v", err)
		}
	}
	return session, nil
}

func openManager(cctx context.Context, ctx *cli.Context, name string) (*hme.Manager, error) {
	session, err := openSession(cctx, ctx, name)
	if err != nil {
		return nil, err
	}
	return hme.NewManager(session), nil
}
