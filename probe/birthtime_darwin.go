//go:build darwin
// +build darwin

package probe

import (
	"time"

	"golang.org/x/sys/unix"
)

func birthTime(path string) (time.Time, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, err
	}
	return time.Unix(st.Btim.Sec, st.Btim.Nsec), nil
}
