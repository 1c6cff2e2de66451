package cmd

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/hmectl/hmectl/pkg/credman/keyring"
	"github.com/spf13/afero"
)

// captureOutput captures stdout and stderr during function execution.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	var bufOut, bufErr bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); io.Copy(&bufOut, rOut) }()
	go func() { defer wg.Done(); io.Copy(&bufErr, rErr) }()

	f()

	wOut.Close()
	wErr.Close()
	wg.Wait()
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	rOut.Close()
	rErr.Close()

	return bufOut.String(), bufErr.String()
}

// assertContains checks if output contains the expected substring.
func assertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

// assertNotContains checks if output does NOT contain the specified substring.
func assertNotContains(t *testing.T, output, notExpected string) {
	t.Helper()
	if strings.Contains(output, notExpected) {
		t.Errorf("expected output to NOT contain %q, got:\n%s", notExpected, output)
	}
}

// assertErrorFormat checks that error output follows the standard format:
// hmectl: cmd[action]: msg
func assertErrorFormat(t *testing.T, output, cmd, action string) {
	t.Helper()
	pattern := "hmectl: " + cmd + "[" + action + "]:"
	if !strings.Contains(output, pattern) {
		t.Errorf("expected error format %q, got:\n%s", pattern, output)
	}
}

const (
	testConfigDir = "/cfg"
	listBody      = `{"success":true,"timestamp":1,"result":{
		"forwardToEmails":["me@example.com"],
		"selectedForwardTo":"me@example.com",
		"hmeEmails":[
			{"anonymousId":"id-1","hme":"a@icloud.com","label":"shop","note":"n1","createTimestamp":1700000000000,"isActive":true,"forwardToEmail":"me@example.com"},
			{"anonymousId":"id-2","hme":"b@icloud.com","label":"news","note":"","createTimestamp":1600000000000,"isActive":false,"forwardToEmail":"me@example.com"}
		]}}`
)

type apiCall struct {
	Method string
	Path   string
	Cookie string
	Body   map[string]any
}

// fakeICloud serves the setup validation endpoint and the Hide My Email
// endpoints from one server.
type fakeICloud struct {
	*httptest.Server

	mu             sync.Mutex
	routes         map[string]func(w http.ResponseWriter)
	calls          []apiCall
	validateStatus int
	generated      int
}

func newFakeICloud(t *testing.T) *fakeICloud {
	t.Helper()
	f := &fakeICloud{routes: map[string]func(http.ResponseWriter){}, validateStatus: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)

	f.routes["POST /v1/hme/generate"] = func(w http.ResponseWriter) {
		f.generated++
		fmt.Fprintf(w, `{"success":true,"timestamp":1,"result":{"hme":"x%d@icloud.com"}}`, f.generated)
	}
	f.handle(http.MethodGet, "/v2/hme/list", http.StatusOK, listBody)
	for _, p := range []string{"updateMetaData", "deactivate", "reactivate", "delete"} {
		f.handle(http.MethodPost, "/v1/hme/"+p, http.StatusOK, `{"success":true,"timestamp":1}`)
	}
	return f
}

func (f *fakeICloud) serve(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &body)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Cookie: r.Header.Get("Cookie"),
		Body:   body,
	})
	if r.URL.Path == "/setup/ws/1/validate" {
		if f.validateStatus != http.StatusOK {
			w.WriteHeader(f.validateStatus)
			fmt.Fprint(w, `{"error":"Missing X-APPLE-WEBAUTH-TOKEN cookie"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "X-APPLE-WEBAUTH-TOKEN", Value: "v2"})
		fmt.Fprintf(w, `{"webservices":{
			"premiummailsettings":{"url":%q,"status":"active"},
			"drivews":{"url":"https://p1-drivews.icloud.com","status":"active"}}}`, f.URL)
		return
	}
	route, ok := f.routes[r.Method+" "+r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	route(w)
}

func (f *fakeICloud) handle(method, path string, status int, body string) {
	f.routes[method+" "+path] = func(w http.ResponseWriter) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

// reserveWith makes the reserve endpoint echo the claimed address.
func (f *fakeICloud) reserveWith(status int) {
	f.routes["POST /v1/hme/reserve"] = func(w http.ResponseWriter) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, "oops")
			return
		}
		last := f.calls[len(f.calls)-1].Body
		fmt.Fprintf(w, `{"success":true,"timestamp":1,"result":{"hme":{
			"anonymousId":"id-new","hme":%q,"label":%q,"note":%q,"createTimestamp":1700000000000,"isActive":true}}}`,
			last["hme"], last["label"], last["note"])
	}
}

// requests returns the calls made to path.
func (f *fakeICloud) requests(path string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

type memKeyring struct {
	key []byte
}

func (m *memKeyring) GetKey() ([]byte, error) {
	if m.key == nil {
		return nil, errors.New("secret not found in keyring")
	}
	return m.key, nil
}

func (m *memKeyring) SetKey() ([]byte, error) {
	m.key = bytes.Repeat([]byte{0x42}, keyring.KeySize)
	return m.key, nil
}

func (m *memKeyring) DeleteKey() error {
	m.key = nil
	return nil
}

type testEnv struct {
	api  *fakeICloud
	fs   afero.Fs
	env  map[string]string
	ring *memKeyring
}

// newTestEnv points the commands at a fake iCloud, an in-memory file
// system and an in-memory keyring.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	te := &testEnv{
		api:  newFakeICloud(t),
		fs:   afero.NewMemMapFs(),
		ring: &memKeyring{},
	}
	te.env = map[string]string{
		"HMECTL_CONFIG_DIR": testConfigDir,
		"HMECTL_SETUP_URL":  te.api.URL + "/setup/ws/1",
		cookieKeyEnv:        hex.EncodeToString(bytes.Repeat([]byte{0x07}, keyring.KeySize)),
	}

	oldFs, oldGetenv, oldKeyring := appFs, getenv, newKeyring
	oldStdin, oldTerminal, oldProgress := stdin, isTerminal, progressOutput
	appFs = te.fs
	getenv = func(k string) string { return te.env[k] }
	newKeyring = func() keyring.Provider { return te.ring }
	stdin = strings.NewReader("")
	isTerminal = func(int) bool { return false }
	progressOutput = io.Discard
	t.Cleanup(func() {
		appFs, getenv, newKeyring = oldFs, oldGetenv, oldKeyring
		stdin, isTerminal, progressOutput = oldStdin, oldTerminal, oldProgress
	})
	return te
}

// run executes hmectl with args and returns its stdout.
func (te *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var err error
	out, _ := captureOutput(func() {
		err = Execute(append([]string{"hmectl"}, args...), BuildArgs{Version: "1.0.0", BuildType: "test"})
	})
	return out, err
}

// login stores a validated session.
func (te *testEnv) login(t *testing.T) {
	t.Helper()
	out, err := te.run(t, "login", "--cookie", "X-APPLE-WEBAUTH-TOKEN=v1; X-APPLE-WEBAUTH-USER=secret-user")
	if err != nil {
		t.Fatalf("login failed: %v\n%s", err, out)
	}
}
