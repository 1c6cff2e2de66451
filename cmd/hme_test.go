package cmd

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/hmectl/hmectl/cmd/common"
	"github.com/hmectl/hmectl/internal/config"
)

func TestGenerateCount(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	out, err := te.run(t, "generate", "-n", "3")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	for _, a := range []string{"x1@icloud.com", "x2@icloud.com", "x3@icloud.com"} {
		assertContains(t, out, a)
	}
	if n := len(te.api.requests("/v1/hme/reserve")); n != 0 {
		t.Errorf("generate must not reserve, got %d reserve calls", n)
	}
}

func TestGenerateBadCount(t *testing.T) {
	te := newTestEnv(t)
	out, err := te.run(t, "generate", "--count", "0")
	if !errors.Is(err, common.ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
	assertContains(t, out, errBadCount.Error())
}

func TestReserve(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	te.api.reserveWith(http.StatusOK)
	out, err := te.run(t, "reserve", "--label", "shop", "--note", "n", "-n", "2")
	if err != nil {
		t.Fatalf("reserve: %v\n%s", err, out)
	}
	assertContains(t, out, "x1@icloud.com")
	assertContains(t, out, "x2@icloud.com")
	calls := te.api.requests("/v1/hme/reserve")
	if len(calls) != 2 {
		t.Fatalf("expected 2 reserve calls, got %d", len(calls))
	}
	if b := calls[1].Body; b["hme"] != "x2@icloud.com" || b["label"] != "shop" || b["note"] != "n" {
		t.Errorf("unexpected reserve payload %v", b)
	}
}

func TestReserveDefaults(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	te.api.reserveWith(http.StatusOK)
	cfg := config.Default()
	cfg.DefaultLabel = "auto"
	cfg.DefaultNote = "from config"
	if err := config.Save(te.fs, testConfigDir+"/config.toml", cfg); err != nil {
		t.Fatalf("config.Save: %v", err)
	}
	if out, err := te.run(t, "reserve"); err != nil {
		t.Fatalf("reserve: %v\n%s", err, out)
	}
	if b := te.api.requests("/v1/hme/reserve")[0].Body; b["label"] != "auto" || b["note"] != "from config" {
		t.Errorf("config defaults not used: %v", b)
	}

	if out, err := te.run(t, "reserve", "--note", ""); err != nil {
		t.Fatalf("reserve: %v\n%s", err, out)
	}
	if note, ok := te.api.requests("/v1/hme/reserve")[1].Body["note"]; !ok || note != "" {
		t.Errorf("explicit empty note must win over the default, got %v", note)
	}
}

func TestReserveNoLabel(t *testing.T) {
	te := newTestEnv(t)
	out, err := te.run(t, "reserve")
	if !errors.Is(err, common.ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
	assertContains(t, out, "label is empty")
	if len(te.api.calls) != 0 {
		t.Errorf("no request expected, got %d", len(te.api.calls))
	}
}

func TestReserveOrphaned(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	te.api.reserveWith(http.StatusInternalServerError)
	out, err := te.run(t, "reserve", "-l", "shop")
	if !errors.Is(err, common.ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
	assertContains(t, out, "Generated x1@icloud.com but could not reserve it")
	assertErrorFormat(t, out, "reserve", "claim")
}

func TestReserveStopsAtFirstError(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	te.api.reserveWith(http.StatusInternalServerError)
	if _, err := te.run(t, "reserve", "-l", "shop", "-n", "5"); !errors.Is(err, common.ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
	if n := len(te.api.requests("/v1/hme/generate")); n != 1 {
		t.Errorf("expected the batch to stop after 1 generate, got %d", n)
	}
}

func TestClaim(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	te.api.reserveWith(http.StatusOK)
	out, err := te.run(t, "claim", "--label", "shop", "g@icloud.com")
	if err != nil {
		t.Fatalf("claim: %v\n%s", err, out)
	}
	assertContains(t, out, "Reserved g@icloud.com (id-new)")

	out, err = te.run(t, "claim", "--label", "shop")
	if !errors.Is(err, common.ErrFailed) {
		t.Fatalf("expected ErrFailed without an address, got %v", err)
	}
	assertContains(t, out, "address is empty")
}

func TestClaimMismatch(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	te.api.handle(http.MethodPost, "/v1/hme/reserve", http.StatusOK,
		`{"success":true,"timestamp":1,"result":{"hme":{"anonymousId":"id","hme":"g@icloud.com","isActive":false}}}`)
	out, err := te.run(t, "claim", "-l", "shop", "g@icloud.com")
	if !errors.Is(err, common.ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
	assertContains(t, out, "hide my email for g@icloud.com is inactive/invalid")
}

func TestList(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	out, err := te.run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	assertContains(t, out, "Addresses forwarding to me@example.com")
	assertContains(t, out, "a@icloud.com")
	assertContains(t, out, "b@icloud.com")
	if strings.Index(out, "a@icloud.com") > strings.Index(out, "b@icloud.com") {
		t.Error("newest address must come first")
	}

	out, _ = te.run(t, "list", "--active")
	assertContains(t, out, "a@icloud.com")
	assertNotContains(t, out, "b@icloud.com")

	out, _ = te.run(t, "list", "--label", "news")
	assertContains(t, out, "b@icloud.com")
	assertNotContains(t, out, "a@icloud.com")

	out, _ = te.run(t, "list", "--label", "news", "-a")
	assertContains(t, out, "no addresses found")
}

func TestListAPIError(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	te.api.handle(http.MethodGet, "/v2/hme/list", http.StatusOK,
		`{"success":false,"timestamp":1,"error":{"errorCode":"-41015","errorMessage":"rate limited"}}`)
	out, err := te.run(t, "list")
	if !errors.Is(err, common.ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
	assertErrorFormat(t, out, "list", "get-list")
	assertContains(t, out, "rate limited")
}

func TestLifecycleByID(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	for _, tt := range []struct{ cmd, path, done string }{
		{"deactivate", "/v1/hme/deactivate", "Deactivated id-1"},
		{"reactivate", "/v1/hme/reactivate", "Reactivated id-1"},
	} {
		out, err := te.run(t, tt.cmd, "id-1")
		if err != nil {
			t.Fatalf("%s: %v\n%s", tt.cmd, err, out)
		}
		assertContains(t, out, tt.done)
		calls := te.api.requests(tt.path)
		if len(calls) != 1 || calls[0].Body["anonymousId"] != "id-1" {
			t.Errorf("%s: unexpected calls %+v", tt.cmd, calls)
		}
	}
	if n := len(te.api.requests("/v2/hme/list")); n != 0 {
		t.Errorf("an anonymous id needs no lookup, got %d list calls", n)
	}
}

func TestLifecycleByAddress(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	if out, err := te.run(t, "deactivate", "b@icloud.com"); err != nil {
		t.Fatalf("deactivate: %v\n%s", err, out)
	}
	if got := te.api.requests("/v1/hme/deactivate")[0].Body["anonymousId"]; got != "id-2" {
		t.Errorf("deactivated %v, want id-2", got)
	}

	out, err := te.run(t, "deactivate", "nobody@icloud.com")
	if !errors.Is(err, common.ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
	assertErrorFormat(t, out, "deactivate", "lookup")
	assertContains(t, out, "address not found")
}

func TestDeleteConfirm(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	stdin = strings.NewReader("no\n")
	out, err := te.run(t, "delete", "id-2")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertContains(t, out, "Cancelled delete operation!")
	if n := len(te.api.requests("/v1/hme/delete")); n != 0 {
		t.Fatalf("declined delete sent %d requests", n)
	}

	stdin = strings.NewReader("yes\n")
	if out, err := te.run(t, "delete", "id-2"); err != nil {
		t.Fatalf("delete: %v\n%s", err, out)
	}
	if out, err := te.run(t, "delete", "-f", "b@icloud.com"); err != nil {
		t.Fatalf("delete --force: %v\n%s", err, out)
	}
	if n := len(te.api.requests("/v1/hme/delete")); n != 2 {
		t.Errorf("expected 2 delete calls, got %d", n)
	}
}

func TestUpdate(t *testing.T) {
	te := newTestEnv(t)
	te.login(t)
	if out, err := te.run(t, "update", "--label", "shopping", "a@icloud.com"); err != nil {
		t.Fatalf("update: %v\n%s", err, out)
	}
	b := te.api.requests("/v1/hme/updateMetaData")[0].Body
	if b["anonymousId"] != "id-1" || b["label"] != "shopping" || b["note"] != "n1" {
		t.Errorf("update must keep the current note, got %v", b)
	}

	if out, err := te.run(t, "update", "--label", "x", "--note", "", "id-1"); err != nil {
		t.Fatalf("update: %v\n%s", err, out)
	}
	if b := te.api.requests("/v1/hme/updateMetaData")[1].Body; b["note"] != "" {
		t.Errorf("explicit note must replace the current one, got %v", b)
	}

	out, err := te.run(t, "update", "a@icloud.com")
	if !errors.Is(err, common.ErrFailed) {
		t.Fatalf("expected ErrFailed without a label, got %v", err)
	}
	assertContains(t, out, "label is empty")
}

func TestProgressBarOnlyForBatches(t *testing.T) {
	var buf strings.Builder
	old := progressOutput
	progressOutput = &buf
	defer func() { progressOutput = old }()

	got, err := runBatch(1, "Generating", func() (string, error) { return "one", nil })
	if err != nil || len(got) != 1 || buf.Len() != 0 {
		t.Fatalf("single item: %v %v, bar output %q", got, err, buf.String())
	}

	boom := errors.New("boom")
	i := 0
	got, err = runBatch(3, "Generating", func() (string, error) {
		i++
		if i == 2 {
			return "", boom
		}
		return "ok", nil
	})
	if !errors.Is(err, boom) || len(got) != 1 {
		t.Fatalf("runBatch() = %v, %v", got, err)
	}
}

func TestConfirm(t *testing.T) {
	old := stdin
	defer func() { stdin = old }()

	var ok bool
	stdin = strings.NewReader("y\n")
	captureOutput(func() { ok = confirm(command("delete")) })
	if !ok {
		t.Error("expected confirm to accept y")
	}
	stdin = strings.NewReader("")
	captureOutput(func() { ok = confirm(command("delete")) })
	if ok {
		t.Error("expected confirm to reject empty input")
	}
	if !confirm(command("delete"), true) {
		t.Error("force must skip the prompt")
	}
}


func TestConfigCommand(t *testing.T) {
	te := newTestEnv(t)
	out, err := te.run(t, "--proxy", "socks5://127.0.0.1:1080", "config", "--init")
	if err != nil {
		t.Fatalf("config --init: %v\n%s", err, out)
	}
	assertContains(t, out, "Wrote /cfg/config.toml")

	delete(te.env, "HMECTL_SETUP_URL")
	out, err = te.run(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	assertContains(t, out, "socks5://127.0.0.1:1080")
	assertContains(t, out, te.api.URL+"/setup/ws/1")

	out, err = te.run(t, "config", "--init")
	if !errors.Is(err, common.ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
	assertContains(t, out, "already exists")
}
