//go:build linux
// +build linux

package probe

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime 通过 statx(STATX_BTIME) 读取创建时间；旧内核或不支持的文件系统返回错误。
func birthTime(path string) (time.Time, error) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}, err
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, errors.New("statx: birth time not supported")
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
}
