package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultMicCommand 默认的录音命令（输出 16kHz 单声道 S16_LE 原始 PCM）
const DefaultMicCommand = "arecord -q -t raw -f S16_LE -r 16000 -c 1"

// Env 环境变量覆盖
type Env struct {
	Verbose    bool   `env:"QUACKDUCK_VERBOSE"`
	LogDir     string `env:"QUACKDUCK_LOG_DIR"`
	Skin       string `env:"QUACKDUCK_SKIN"`
	PetName    string `env:"QUACKDUCK_PET_NAME"`
	MicCommand string `env:"QUACKDUCK_MIC_COMMAND" envDefault:"arecord -q -t raw -f S16_LE -r 16000 -c 1"`
}

// LoadEnv 加载 .env 文件（可选）并解析环境变量
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Printf("[Config] Failed to load %s: %v", f, err)
			}
		}
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// Apply 把环境变量覆盖写入设置
func (e Env) Apply(s *Settings) {
	if e.Skin != "" {
		s.SelectedSkin = e.Skin
	}
	if e.PetName != "" {
		s.PetName = e.PetName
	}
}
