package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	DBPath        string
	StaticDir     string
	SnapshotDir   string // relative to StaticDir; stored in image_path as "<SnapshotDir>/<file>"
	CameraDevice  int
	ModelPath     string
	ConfigPath    string
	ConfThreshold float64
	InputSize     int
	SaveCooldown  int // seconds between persisted detection events
	RecordsPage   int
	LogDirectory  string
}

func Load() *Config {
	// Optional; deployments may set env vars directly instead.
	_ = godotenv.Load()

	return &Config{
		Port:          getEnvAsInt("PORT", 5000),
		DBPath:        getEnv("DB_PATH", "deteksi.db"),
		StaticDir:     getEnv("STATIC_DIR", "static"),
		SnapshotDir:   getEnv("SNAPSHOT_DIR", "processed"),
		CameraDevice:  getEnvAsInt("CAMERA_DEVICE", 0),
		ModelPath:     getEnv("MODEL_PATH", filepath.Join(".", "models", "ppe_detector.pb")),
		ConfigPath:    getEnv("CONFIG_PATH", filepath.Join(".", "models", "ppe_detector.pbtxt")),
		ConfThreshold: getEnvAsFloat("CONF_THRESHOLD", 0.5),
		InputSize:     getEnvAsInt("INPUT_SIZE", 320),
		SaveCooldown:  getEnvAsInt("SAVE_COOLDOWN", 10),
		RecordsPage:   getEnvAsInt("RECORDS_PER_PAGE", 100),
		LogDirectory:  getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
