//go:build !darwin && !windows && !linux
// +build !darwin,!windows,!linux

package probe

import (
	"context"

	"github.com/darkit/refurbish"
)

// otherPlatform 未支持的系统：没有信号源，报告为 NotRefurbished / low。
type otherPlatform struct{}

func newPlatform(Runner) Platform {
	return otherPlatform{}
}

func (otherPlatform) Name() string                        { return "other" }
func (otherPlatform) Profile() string                     { return refurbish.ProfileGeneric }
func (otherPlatform) Sources() []Source                   { return nil }
func (otherPlatform) Telemetry(context.Context) Telemetry { return Telemetry{} }
