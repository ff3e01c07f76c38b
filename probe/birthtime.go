package probe

import (
	"os"
	"time"
)

const dateLayout = "2006-01-02"

// fileDate 返回文件的创建日期（不支持时退回修改时间），格式 YYYY-MM-DD。
func fileDate(path string) (string, error) {
	t, err := birthTime(path)
	if err != nil || t.IsZero() {
		fi, statErr := os.Stat(path)
		if statErr != nil {
			return "", statErr
		}
		t = fi.ModTime()
	}
	return t.Format(dateLayout), nil
}

func formatUnixDate(sec int64) string {
	return time.Unix(sec, 0).Format(dateLayout)
}
