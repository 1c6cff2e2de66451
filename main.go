package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hmectl/hmectl/cmd"
	"github.com/hmectl/hmectl/cmd/common"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

var osExit = os.Exit

func main() {
	osExit(runMain(os.Args, func(args []string) error {
		return cmd.Execute(args, cmd.BuildArgs{
			Version:   version,
			Commit:    commit,
			Date:      date,
			BuildType: buildType,
		})
	}))
}

// runMain returns the exit code. Errors already reported by a command
// are not printed again.
func runMain(args []string, execute func([]string) error) int {
	err := execute(args)
	if err == nil {
		return 0
	}
	if !errors.Is(err, common.ErrFailed) {
		fmt.Printf("hmectl: %s\n", err.Error())
	}
	return 1
}
