//go:build linux
// +build linux

package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkit/refurbish"
)

func TestLinuxPlatformCollect(t *testing.T) {
	fs := newTestSysfs(t)
	p := &linuxPlatform{run: runCommand, fs: fs}
	c := NewCollector(p, WithCacheTTL(0))

	facts, _ := c.Collect(context.Background())
	assert.Equal(t, "PF2ABCDE", facts.Serial)
	require.Len(t, facts.Firmware, 1)
	assert.Equal(t, "dmi", facts.Firmware[0].Source)
	require.NotNil(t, facts.Battery)
	assert.Equal(t, 37, facts.Battery.CycleCount)
	assert.Len(t, facts.Storage, 3)
	assert.Len(t, facts.Displays, 2)
	assert.Nil(t, facts.Enrollment)

	// 端到端：固件里的 Renewed 标记产生 dmi_refurb
	report := refurbish.Assess(facts, p.Profile())
	names := make([]string, 0, len(report.Indicators))
	for _, ind := range report.Indicators {
		names = append(names, ind.Name)
	}
	assert.Contains(t, names, "dmi_refurb")
	assert.True(t, report.IsRefurbished)
}

func TestLinuxPlatformTelemetry(t *testing.T) {
	fs := newTestSysfs(t)

	var gotArgs []string
	run := func(_ context.Context, name string, args ...string) (string, error) {
		gotArgs = append([]string{name}, args...)
		// smartctl 以非零退出码报告状态，但 stdout 仍有效
		return `{"model_name":"Samsung SSD 980 PRO 1TB","smart_status":{"passed":true},"power_on_time":{"hours":12}}`,
			errors.New("exit status 4")
	}
	p := &linuxPlatform{run: run, fs: fs}

	tel := p.Telemetry(context.Background())
	require.NotNil(t, tel.Battery)
	assert.InDelta(t, 90.0, tel.Battery.Health, 1e-9)
	require.NotNil(t, tel.Storage)
	assert.Equal(t, "Verified", tel.Storage.SmartStatus)
	assert.Equal(t, "/dev/nvme0n1", gotArgs[len(gotArgs)-1])
}

func TestLinuxPlatformTelemetryWithoutSmartctl(t *testing.T) {
	fs := newTestSysfs(t)
	run := func(context.Context, string, ...string) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	}
	p := &linuxPlatform{run: run, fs: fs}

	tel := p.Telemetry(context.Background())
	require.NotNil(t, tel.Storage)
	assert.Equal(t, "Samsung SSD 980 PRO 1TB", tel.Storage.Model)
	assert.Equal(t, unknownValue, tel.Storage.SmartStatus)
}

func TestLinuxPlatformEmptyRoot(t *testing.T) {
	p := &linuxPlatform{run: runCommand, fs: sysfs{root: t.TempDir()}}
	assert.Equal(t, "linux", p.Name())
	assert.Equal(t, refurbish.ProfileGeneric, p.Profile())

	tel := p.Telemetry(context.Background())
	assert.Nil(t, tel.Battery)
	assert.Nil(t, tel.Storage)
}
