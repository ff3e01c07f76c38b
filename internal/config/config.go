// Package config 负责 refurbcheck 的分层配置：命令行 > 环境变量 > 配置文件 > 默认值。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/darkit/refurbish"
	"github.com/darkit/refurbish/internal/logging"
	"github.com/darkit/refurbish/probe"
)

// EnvPrefix 环境变量前缀，例如 REFURB_LOG_LEVEL、REFURB_PROBE_TIMEOUT。
const EnvPrefix = "REFURB"

// 配置键
const (
	KeyLogLevel             = "log.level"
	KeyLogFormat            = "log.format"
	KeyProfile              = "profile"
	KeyProbeWorkers         = "probe.workers"
	KeyProbeTimeout         = "probe.timeout"
	KeyProbeCacheTTL        = "probe.cache_ttl"
	KeyLowCyclesEnabled     = "battery.low_cycles.enabled"
	KeyLowCyclesThreshold   = "battery.low_cycles.threshold"
	KeyHighHealthEnabled    = "battery.high_health.enabled"
	KeyHighHealthThreshold  = "battery.high_health.threshold"
	KeyProfiles             = "profiles"
	defaultConfigDirName    = ".refurbcheck"
	defaultConfigFileName   = "config"
	defaultConfigFileFormat = "yaml"
)

// Config 运行配置。
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Profile string        `mapstructure:"profile" yaml:"profile"`
	Probe   ProbeConfig   `mapstructure:"probe" yaml:"probe"`
	Battery BatteryConfig `mapstructure:"battery" yaml:"battery"`

	// Profiles 自定义厂商判定表，同名时覆盖内置表。
	Profiles []refurbish.Profile `mapstructure:"profiles" yaml:"profiles,omitempty"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type ProbeConfig struct {
	Workers  int           `mapstructure:"workers" yaml:"workers"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// MarshalYAML 时长以 "10s" 形式输出，与配置文件的写法一致。
func (p ProbeConfig) MarshalYAML() (any, error) {
	return struct {
		Workers  int    `yaml:"workers"`
		Timeout  string `yaml:"timeout"`
		CacheTTL string `yaml:"cache_ttl"`
	}{p.Workers, p.Timeout.String(), p.CacheTTL.String()}, nil
}

// BatteryConfig 覆盖所选判定表中的电池规则。未设置的字段保持判定表自身的值。
type BatteryConfig struct {
	LowCycles  RuleOverride `mapstructure:"low_cycles" yaml:"low_cycles"`
	HighHealth RuleOverride `mapstructure:"high_health" yaml:"high_health"`
}

type RuleOverride struct {
	Enabled   *bool    `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Threshold *float64 `mapstructure:"threshold" yaml:"threshold,omitempty"`
}

// Default 默认配置。profile 为空表示按平台自动选择。
func Default() Config {
	return Config{
		Log:   LogConfig{Level: "info", Format: "text"},
		Probe: ProbeConfig{Workers: probe.DefaultWorkers, Timeout: probe.DefaultTimeout, CacheTTL: probe.DefaultCacheTTL},
	}
}

// SetDefaults 把默认值写入 viper。
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyProfile, d.Profile)
	v.SetDefault(KeyProbeWorkers, d.Probe.Workers)
	v.SetDefault(KeyProbeTimeout, d.Probe.Timeout)
	v.SetDefault(KeyProbeCacheTTL, d.Probe.CacheTTL)
}

// Load 读取 .env、配置文件与环境变量并解码。
//
// cfgFile 为空时在 $HOME/.refurbcheck/ 下查找 config.yaml，找不到不算错误；
// 显式指定的文件必须存在。
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	// .env 只是便利，不存在时忽略
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 没有默认值的键需要显式绑定，Unmarshal 才能看到环境变量
	for _, key := range []string{KeyLowCyclesEnabled, KeyLowCyclesThreshold, KeyHighHealthEnabled, KeyHighHealthThreshold} {
		_ = v.BindEnv(key)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if dir, err := DefaultDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName(defaultConfigFileName)
		v.SetConfigType(defaultConfigFileFormat)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return Decode(v)
}

// Decode 把 viper 中的设置解码为 Config 并校验。
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 校验取值范围，返回全部问题。
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format))
	}
	if c.Probe.Workers <= 0 {
		errs = append(errs, fmt.Errorf("probe.workers must be positive, got %d", c.Probe.Workers))
	}
	if c.Probe.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("probe.timeout must be positive, got %s", c.Probe.Timeout))
	}
	if c.Probe.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("probe.cache_ttl must not be negative, got %s", c.Probe.CacheTTL))
	}
	if t := c.Battery.LowCycles.Threshold; t != nil && *t < 0 {
		errs = append(errs, fmt.Errorf("battery.low_cycles.threshold must not be negative, got %g", *t))
	}
	if t := c.Battery.HighHealth.Threshold; t != nil && (*t < 0 || *t > 100) {
		errs = append(errs, fmt.Errorf("battery.high_health.threshold must be within 0-100, got %g", *t))
	}
	for i, p := range c.Profiles {
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("profiles[%d]: name is required", i))
		}
	}
	return errors.Join(errs...)
}

// RegisterProfiles 把自定义判定表注册到全局注册表。
// 序列号前缀统一转为大写，与探测到的序列号写法一致。
func (c Config) RegisterProfiles() {
	for _, p := range c.Profiles {
		p = p.Clone()
		p.Name = strings.TrimSpace(p.Name)
		if len(p.RefurbSerialPrefixes) > 0 {
			prefixes := make(map[string]string, len(p.RefurbSerialPrefixes))
			for k, v := range p.RefurbSerialPrefixes {
				prefixes[strings.ToUpper(strings.TrimSpace(k))] = v
			}
			p.RefurbSerialPrefixes = prefixes
		}
		refurbish.RegisterProfile(p)
	}
}

// ResolveProfile 选择判定表：显式配置优先，否则使用平台建议的表；
// 然后叠加电池规则覆盖。名称未注册时返回错误。
func (c Config) ResolveProfile(platformDefault string) (refurbish.Profile, error) {
	name := strings.TrimSpace(c.Profile)
	if name == "" {
		name = platformDefault
	}
	p, ok := refurbish.LookupProfile(name)
	if !ok {
		return refurbish.Profile{}, fmt.Errorf("unknown profile %q (available: %s)",
			name, strings.Join(refurbish.ProfileNames(), ", "))
	}
	c.Battery.apply(&p.Battery)
	return p, nil
}

func (b BatteryConfig) apply(policy *refurbish.BatteryPolicy) {
	if b.LowCycles.Enabled != nil {
		policy.LowCyclesEnabled = *b.LowCycles.Enabled
	}
	if b.LowCycles.Threshold != nil {
		policy.LowCycleThreshold = int(*b.LowCycles.Threshold)
	}
	if b.HighHealth.Enabled != nil {
		policy.HighHealthEnabled = *b.HighHealth.Enabled
	}
	if b.HighHealth.Threshold != nil {
		policy.HighHealthThreshold = *b.HighHealth.Threshold
	}
}

// DefaultDir 默认配置目录 $HOME/.refurbcheck。
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, defaultConfigDirName), nil
}

// DefaultPath 默认配置文件路径。
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultConfigFileName+"."+defaultConfigFileFormat), nil
}
