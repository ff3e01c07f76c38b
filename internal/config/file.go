package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileHeader = `# refurbcheck configuration
#
# Priority (highest first):
#   1. command-line flags
#   2. environment variables (REFURB_*, e.g. REFURB_LOG_LEVEL=debug)
#   3. this file
#   4. built-in defaults
#
# profile: leave empty to pick apple/windows/generic from the running platform.
#
# battery overrides apply on top of the selected profile, e.g.
#   battery:
#     low_cycles:
#       enabled: true
#       threshold: 50
#
# custom vendor profiles:
#   profiles:
#     - name: acme
#       refurb_serial_prefixes: {"RF": "ACME Renewed"}
#       firmware_markers: ["refurb", "renewed"]
#       first_party_storage: ["ACME NVMe"]

`

// Marshal 把配置编码为 YAML。
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault 在 path 写入带注释的默认配置。文件已存在时返回错误，不覆盖。
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	body, err := Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data := append([]byte(fileHeader), body...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
