package main

import (
	"context"
	"os"

	"github.com/LumeraProtocol/kate/katenode/cmd"
	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
)

func main() {
	defer errors.Recover(func(err error) {
		logtrace.Error(context.Background(), "katenode panicked", logtrace.Fields{
			logtrace.FieldError:      err.Error(),
			logtrace.FieldStackTrace: errors.ErrorStack(err),
		})
		logtrace.Sync()
		os.Exit(2)
	})

	cmd.Execute()
}
