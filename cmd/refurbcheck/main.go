// refurbcheck 判断本机是否为翻新机或更换过部件。
//
// 用法：
//
//	refurbcheck check [--format text|json] [--profile NAME] [--facts FILE]
//	refurbcheck facts
//	refurbcheck telemetry
//	refurbcheck profiles list|show [NAME]
//	refurbcheck config show|init
//	refurbcheck version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/darkit/refurbish/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
