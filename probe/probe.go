// Package probe gathers the raw facts consumed by the refurbish engine.
//
// Each operating system has one Platform implementation selected at build
// time (platform_darwin.go, platform_windows.go, platform_linux.go,
// platform_others.go). A Platform exposes a list of independent Sources; the
// Collector runs them concurrently with a bounded worker count and a per-probe
// timeout, and turns every failure into an absent fact.
package probe

import (
	"context"

	"github.com/darkit/refurbish"
)

// Setter 把一次探测的结果写入 Facts。Setter 在收集完成后按 Source 顺序依次执行，
// 因此不需要加锁。
type Setter func(f *refurbish.Facts)

// Source 单个信号源。Probe 应当尊重 ctx 的取消；返回错误或 nil Setter 都表示“事实缺失”。
type Source struct {
	Name  string
	Probe func(ctx context.Context) (Setter, error)
}

// Platform 平台相关的探针集合。
//
// 设计约束（与硬件信息采集一致）：
//  1. 各平台输出同一语义的 Facts 字段；
//  2. 信息源缺失（权限不足、命令不存在、容器环境）时降级为空值，不导致整体失败；
//  3. 引擎只依赖 Facts，不关心是哪个平台产出的。
type Platform interface {
	// Name 平台名（darwin / windows / linux / other）。
	Name() string
	// Profile 建议使用的厂商判定表名称。
	Profile() string
	// Sources 返回本平台的全部信号源。
	Sources() []Source
	// Telemetry 采集电池与存储健康信息，失败字段为 nil。
	Telemetry(ctx context.Context) Telemetry
}

// Detect 返回当前操作系统的 Platform。
func Detect() Platform {
	return newPlatform(runCommand)
}

// Telemetry 电池与存储健康的附加信息，不参与翻新判定。
type Telemetry struct {
	Battery *BatteryInfo   `json:"battery"`
	Storage *StorageHealth `json:"storage"`
}

// BatteryInfo 电池健康信息。Health 为满充容量相对设计容量的百分比。
type BatteryInfo struct {
	Health          float64  `json:"health"`
	CycleCount      int      `json:"cycle_count"`
	DesignCapacity  int      `json:"design_capacity"`
	MaxCapacity     int      `json:"max_capacity"`
	CurrentCapacity int      `json:"current_capacity"`
	IsCharging      bool     `json:"is_charging"`
	Temperature     *float64 `json:"temperature"`
}

// StorageHealth 主存储设备的健康信息。
type StorageHealth struct {
	Model        string   `json:"model"`
	SmartStatus  string   `json:"smart_status"`
	PowerOnHours *uint64  `json:"power_on_hours"`
	Temperature  *float64 `json:"temperature"`
}

const unknownValue = "Unknown"

// batteryHealth 两个容量都已知时返回 max/design*100，否则视为 100。
func batteryHealth(design, max int) float64 {
	if design > 0 && max > 0 {
		return float64(max) / float64(design) * 100
	}
	return 100
}
