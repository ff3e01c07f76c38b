//go:build darwin
// +build darwin

package probe

import (
	"context"
	"errors"
	"strings"

	"github.com/darkit/refurbish"
)

var (
	ioregPaths          = []string{"ioreg", "/usr/sbin/ioreg"}
	systemProfilerPaths = []string{"system_profiler", "/usr/sbin/system_profiler"}
	diskutilPaths       = []string{"diskutil", "/usr/sbin/diskutil"}
	profilesPaths       = []string{"profiles", "/usr/bin/profiles"}
)

const appleSetupDone = "/var/db/.AppleSetupDone"

// darwinPlatform macOS 信号源：ioreg / system_profiler / diskutil / profiles。
type darwinPlatform struct {
	run Runner
}

func newPlatform(run Runner) Platform {
	return &darwinPlatform{run: run}
}

func (p *darwinPlatform) Name() string    { return "darwin" }
func (p *darwinPlatform) Profile() string { return refurbish.ProfileApple }

// Sources 顺序即 Setter 的应用顺序：battery 必须在 ioreg 之前，
// ioreg 只为已存在的电池补全生产日期。
func (p *darwinPlatform) Sources() []Source {
	return []Source{
		{Name: "serial", Probe: p.serial},
		{Name: "battery", Probe: p.battery},
		{Name: "ioreg", Probe: p.ioreg},
		{Name: "install_date", Probe: p.installDate},
		{Name: "enrollment", Probe: p.enrollment},
		{Name: "storage", Probe: p.storage},
		{Name: "displays", Probe: p.displays},
	}
}

func (p *darwinPlatform) serial(ctx context.Context) (Setter, error) {
	serial := ""
	out, err := runFirst(ctx, p.run, ioregPaths, "-rd1", "-c", "IOPlatformExpertDevice")
	if err == nil {
		serial = parseIORegSerial(out)
	}
	if serial == "" {
		// 备选：system_profiler
		js, spErr := runFirst(ctx, p.run, systemProfilerPaths, "SPHardwareDataType", "-json")
		if spErr != nil {
			return nil, errors.Join(err, spErr)
		}
		serial = parseSPHardwareSerial([]byte(js))
	}
	if serial == "" {
		return nil, nil
	}
	return func(f *refurbish.Facts) { f.Serial = serial }, nil
}

func (p *darwinPlatform) ioreg(ctx context.Context) (Setter, error) {
	out, err := runFirst(ctx, p.run, ioregPaths, "-l")
	if err != nil {
		return nil, err
	}
	date := parseBatteryManufactureDate(out)
	return func(f *refurbish.Facts) {
		f.Firmware = append(f.Firmware, refurbish.FirmwareDump{Source: "ioreg", Text: out})
		if f.Battery != nil && f.Battery.ManufactureDate == "" {
			f.Battery.ManufactureDate = date
		}
	}, nil
}

func (p *darwinPlatform) installDate(context.Context) (Setter, error) {
	date, err := fileDate(appleSetupDone)
	if err != nil {
		return nil, err
	}
	return func(f *refurbish.Facts) { f.OSInstallDate = date }, nil
}

func (p *darwinPlatform) enrollment(ctx context.Context) (Setter, error) {
	out, err := runFirst(ctx, p.run, profilesPaths, "status", "-type", "enrollment")
	if err != nil {
		return nil, err
	}
	e := parseEnrollment(out)
	if e == nil {
		return nil, nil
	}
	return func(f *refurbish.Facts) { f.Enrollment = e }, nil
}

func (p *darwinPlatform) smartBattery(ctx context.Context) (smartBattery, error) {
	out, err := runFirst(ctx, p.run, ioregPaths, "-r", "-c", "AppleSmartBattery", "-w0")
	if err != nil {
		return smartBattery{}, err
	}
	return parseSmartBattery(out), nil
}

func (p *darwinPlatform) battery(ctx context.Context) (Setter, error) {
	b, err := p.smartBattery(ctx)
	if err != nil {
		return nil, err
	}
	// 台式机没有 AppleSmartBattery
	bat := b.facts()
	if bat == nil {
		return nil, nil
	}
	return func(f *refurbish.Facts) { f.Battery = bat }, nil
}

func (p *darwinPlatform) diskInfo(ctx context.Context) (diskutilInfo, error) {
	out, err := runFirst(ctx, p.run, diskutilPaths, "info", "disk0")
	if err != nil {
		return diskutilInfo{}, err
	}
	return parseDiskutilInfo(out), nil
}

func (p *darwinPlatform) storage(ctx context.Context) (Setter, error) {
	d, err := p.diskInfo(ctx)
	if err != nil {
		return nil, err
	}
	if d.Model == "" {
		if js, spErr := runFirst(ctx, p.run, systemProfilerPaths, "SPStorageDataType", "-json"); spErr == nil {
			d.Model = parseStorageModel([]byte(js))
		}
	}
	if d.Model == "" {
		return nil, nil
	}
	desc := refurbish.StorageDescriptor{Model: d.Model, Internal: d.Internal}
	return func(f *refurbish.Facts) { f.Storage = append(f.Storage, desc) }, nil
}

func (p *darwinPlatform) displays(ctx context.Context) (Setter, error) {
	js, err := runFirst(ctx, p.run, systemProfilerPaths, "SPDisplaysDataType", "-json")
	if err != nil {
		return nil, err
	}
	displays, err := parseDisplays([]byte(js))
	if err != nil {
		return nil, err
	}
	if len(displays) == 0 {
		return nil, nil
	}
	return func(f *refurbish.Facts) { f.Displays = append(f.Displays, displays...) }, nil
}

func (p *darwinPlatform) Telemetry(ctx context.Context) Telemetry {
	var t Telemetry
	if b, err := p.smartBattery(ctx); err == nil {
		t.Battery = b.info()
	}

	d, err := p.diskInfo(ctx)
	if err != nil {
		return t
	}
	h := &StorageHealth{Model: unknownValue, SmartStatus: unknownValue}
	if d.SmartStatus != "" {
		h.SmartStatus = d.SmartStatus
	}
	// SPStorageDataType 的设备名比 diskutil 的介质名更接近型号
	if js, spErr := runFirst(ctx, p.run, systemProfilerPaths, "SPStorageDataType", "-json"); spErr == nil {
		if m := parseStorageModel([]byte(js)); m != "" {
			h.Model = m
		}
	}
	if h.Model == unknownValue && strings.TrimSpace(d.Model) != "" {
		h.Model = d.Model
	}
	t.Storage = h
	return t
}
