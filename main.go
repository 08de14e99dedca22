package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/TheAuditorTool/auditor-core/cmd"
	"github.com/TheAuditorTool/auditor-core/errs"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		var fatal *errs.FatalError
		if errors.As(err, &fatal) {
			os.Exit(int(errs.ExitFatal))
		}
		os.Exit(int(errs.ExitWarnings))
	}
}
