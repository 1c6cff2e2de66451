package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/hmectl/hmectl/cmd/common"
)

func TestMainVersion(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"hmectl", "version"}
	defer func() { os.Args = oldArgs }()
	oldExit := osExit
	osExit = func(code int) {
		if code != 0 {
			t.Fatalf("unexpected exit code: %d", code)
		}
	}
	defer func() { osExit = oldExit }()
	main()
}

func TestRunMainError(t *testing.T) {
	code := runMain([]string{"hmectl"}, func([]string) error {
		return errors.New("boom")
	})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunMainReportedError(t *testing.T) {
	code := runMain([]string{"hmectl"}, func([]string) error {
		return fmt.Errorf("list: %w", common.ErrFailed)
	})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunMainSuccess(t *testing.T) {
	code := runMain([]string{"hmectl"}, func([]string) error { return nil })
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}
