package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadYAML 加载配置，支持多环境
// 1. base file (e.g. config.yaml)
// 2. env overlay next to it (e.g. config.production.yaml), if present
// 3. secrets.env / .env next to it are loaded into the process env (existing vars win)
// Env overrides are applied by the caller through the Override*FromEnv helpers.
func LoadYAML(path, env string, out any) error {
	if err := decodeYAMLFile(path, out); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	if env != "" && env != "base" {
		overlay := overlayPath(path, env)
		if _, err := os.Stat(overlay); err == nil {
			if err := decodeYAMLFile(overlay, out); err != nil {
				return fmt.Errorf("failed to load %s: %w", overlay, err)
			}
		}
	}

	dir := filepath.Dir(path)
	for _, name := range []string{"secrets.env", ".env"} {
		if err := loadEnvFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}

	return nil
}

// decodeYAMLFile decodes onto out, so keys missing from the file keep their current value.
func decodeYAMLFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func overlayPath(path, env string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + env + ext
}

// loadEnvFile 加载 .env 文件 (missing file is not an error)
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// GetEnv 获取环境变量，如果未设置则返回默认值
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetConfigEnv 获取配置环境（从环境变量 CONFIG_ENV，默认为 local）
func GetConfigEnv() string {
	return GetEnv("CONFIG_ENV", "local")
}
