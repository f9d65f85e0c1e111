// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	AI       AIConfig       `toml:"ai"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Lesson   *string `toml:"lesson"`
	Theme    *string `toml:"theme"`
	Seed     *int64  `toml:"seed"`
	WordList *string `toml:"wordlist"`
	DB       *string `toml:"db"`
}

// AIConfig maps remote text generation settings. API keys are read from the
// environment only.
type AIConfig struct {
	Provider       *string `toml:"provider"`
	Model          *string `toml:"model"`
	PerMinuteLimit *int    `toml:"per-minute-limit"`
	Timeout        *string `toml:"timeout"`
}

// Template is written by `typemaster config` when no file exists yet.
const Template = `# typemaster configuration

[practice]
# lesson = "1"
# theme = "cyberpunk futurista"
# seed = 42
# wordlist = "~/.config/typemaster/wordlists/pt.txt"
# db = "~/.local/share/typemaster/typemaster.db"

[ai]
# provider = "gemini"       # gemini | openai | anthropic
# model = "gemini-flash-latest"
# per-minute-limit = 15
# timeout = "20s"
`

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
