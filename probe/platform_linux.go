//go:build linux
// +build linux

package probe

import (
	"context"
	"errors"

	"github.com/darkit/refurbish"
)

var smartctlPaths = []string{"smartctl", "/usr/sbin/smartctl"}

// linuxPlatform Linux 信号源，几乎全部来自 sysfs。
// 在容器或非特权环境下多数文件不可读，此时事实缺失，不报错。
type linuxPlatform struct {
	run Runner
	fs  sysfs
}

func newPlatform(run Runner) Platform {
	return &linuxPlatform{run: run, fs: sysfs{root: "/"}}
}

func (p *linuxPlatform) Name() string    { return "linux" }
func (p *linuxPlatform) Profile() string { return refurbish.ProfileGeneric }

// Linux 没有统一的企业注册信号，不提供 enrollment 源。
func (p *linuxPlatform) Sources() []Source {
	return []Source{
		{Name: "serial", Probe: p.serial},
		{Name: "dmi", Probe: p.dmi},
		{Name: "install_date", Probe: p.installDate},
		{Name: "battery", Probe: p.battery},
		{Name: "storage", Probe: p.storage},
		{Name: "displays", Probe: p.displays},
	}
}

func (p *linuxPlatform) serial(context.Context) (Setter, error) {
	serial := p.fs.dmiSerial()
	if serial == "" {
		return nil, nil
	}
	return func(f *refurbish.Facts) { f.Serial = serial }, nil
}

func (p *linuxPlatform) dmi(context.Context) (Setter, error) {
	text := p.fs.dmiFirmwareText()
	if text == "" {
		return nil, nil
	}
	return func(f *refurbish.Facts) {
		f.Firmware = append(f.Firmware, refurbish.FirmwareDump{Source: "dmi", Text: text})
	}, nil
}

// installDate 根文件系统的创建时间；不支持 btime 时退回安装器日志目录。
func (p *linuxPlatform) installDate(context.Context) (Setter, error) {
	t, btErr := birthTime(p.fs.path())
	if btErr == nil {
		date := t.Format(dateLayout)
		return func(f *refurbish.Facts) { f.OSInstallDate = date }, nil
	}
	date, err := fileDate(p.fs.path("var/log/installer"))
	if err != nil {
		return nil, errors.Join(btErr, err)
	}
	return func(f *refurbish.Facts) { f.OSInstallDate = date }, nil
}

func (p *linuxPlatform) battery(context.Context) (Setter, error) {
	bat := p.fs.battery().facts()
	if bat == nil {
		return nil, nil
	}
	return func(f *refurbish.Facts) { f.Battery = bat }, nil
}

func (p *linuxPlatform) storage(context.Context) (Setter, error) {
	disks := p.fs.storage()
	if len(disks) == 0 {
		return nil, nil
	}
	return func(f *refurbish.Facts) { f.Storage = append(f.Storage, disks...) }, nil
}

func (p *linuxPlatform) displays(context.Context) (Setter, error) {
	displays := p.fs.displays()
	if len(displays) == 0 {
		return nil, nil
	}
	return func(f *refurbish.Facts) { f.Displays = append(f.Displays, displays...) }, nil
}

func (p *linuxPlatform) Telemetry(ctx context.Context) Telemetry {
	t := Telemetry{Battery: p.fs.battery().info()}

	var disk *blockDevice
	for _, d := range p.fs.blockDevices() {
		if d.Internal {
			disk = &d
			break
		}
	}
	if disk == nil {
		return t
	}
	t.Storage = &StorageHealth{Model: disk.Model, SmartStatus: unknownValue}

	// smartctl 通常需要 root；不可用时只报告型号
	var out string
	for _, name := range smartctlPaths {
		var err error
		out, err = p.run(ctx, name, "-H", "-A", "-i", "-j", "/dev/"+disk.Name)
		if err == nil || out != "" {
			break
		}
	}
	if out == "" {
		return t
	}
	if h, err := parseSmartctl([]byte(out)); err == nil {
		if h.Model == unknownValue {
			h.Model = disk.Model
		}
		t.Storage = h
	}
	return t
}
