package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner 执行外部命令并返回 stdout。测试中可替换为固定输出。
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// runCommand 执行命令，只返回 stdout。
// stderr 不向上暴露（避免泄漏本地信息），失败只用于触发降级。
// 非零退出时仍返回已产生的 stdout（smartctl 等工具用退出码表达状态）。
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}

// runFirst 依次尝试多个路径执行同一命令。
// cron 等精简环境下 PATH 可能不包含 /usr/sbin，需要退回绝对路径。
func runFirst(ctx context.Context, run Runner, names []string, args ...string) (string, error) {
	var lastErr error
	for _, name := range names {
		out, err := run(ctx, name, args...)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}
