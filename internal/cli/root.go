// Package cli 实现 refurbcheck 的 cobra 命令树。
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darkit/refurbish/internal/config"
	"github.com/darkit/refurbish/internal/logging"
	"github.com/darkit/refurbish/probe"
)

// Version 构建时通过 -ldflags "-X github.com/darkit/refurbish/internal/cli.Version=..." 注入。
var Version = "dev"

// flagKeys 命令行参数到配置键的映射。只绑定当前执行命令实际拥有的参数，
// 避免不同子命令的同名参数互相覆盖。
var flagKeys = map[string]string{
	"log-level":  config.KeyLogLevel,
	"log-format": config.KeyLogFormat,
	"profile":    config.KeyProfile,
	"workers":    config.KeyProbeWorkers,
	"timeout":    config.KeyProbeTimeout,
}

// app 命令之间共享的运行状态。
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      config.Config
	platform probe.Platform
}

// Execute 以当前系统的探针运行命令树。
func Execute(ctx context.Context) error {
	return NewRootCmd(nil).ExecuteContext(ctx)
}

// NewRootCmd 构建命令树。platform 为 nil 时使用 probe.Detect()。
func NewRootCmd(platform probe.Platform) *cobra.Command {
	a := &app{v: viper.New(), platform: platform}

	root := &cobra.Command{
		Use:   "refurbcheck",
		Short: "Detect refurbished machines and swapped parts",
		Long: `refurbcheck inspects serial numbers, firmware strings, enterprise enrollment,
storage, display and battery facts of the local machine and reports whether it
looks refurbished, which parts appear to be replaced, and how confident the
verdict is.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (REFURB_*)
  3. Config file (~/.refurbcheck/config.yaml)
  4. Defaults`,
		Version:           Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.refurbcheck/config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "text", "log format: text or json")

	root.AddCommand(
		a.newCheckCmd(),
		a.newFactsCmd(),
		a.newTelemetryCmd(),
		a.newProfilesCmd(),
		a.newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// setup 绑定参数、加载配置、初始化日志并注册自定义判定表。
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := logging.ParseLevel(cfg.Log.Level) // 已在 Load 中校验
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())

	cfg.RegisterProfiles()
	if a.platform == nil {
		a.platform = probe.Detect()
	}
	return nil
}

// collector 按配置创建收集器。
func (a *app) collector(runID string) *probe.Collector {
	return probe.NewCollector(a.platform,
		probe.WithWorkers(a.cfg.Probe.Workers),
		probe.WithTimeout(a.cfg.Probe.Timeout),
		probe.WithCacheTTL(a.cfg.Probe.CacheTTL),
		probe.WithLogger(logging.New("probe").With("run_id", runID)),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "refurbcheck %s\n", Version)
		},
	}
}
