package recovery

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config names the external tools and tunes the OCR strategy.
type Config struct {
	Pdftotext       string `toml:"pdftotext"`
	Pdftoppm        string `toml:"pdftoppm"`
	Magick          string `toml:"magick"`
	Tesseract       string `toml:"tesseract"`
	DPI             int    `toml:"dpi"`
	Language        string `toml:"language"`
	PSM             int    `toml:"psm"`
	Threshold       string `toml:"threshold"`
	MaxPages        int    `toml:"max_pages"`
	Workers         int    `toml:"workers"`
	DisableOCR      bool   `toml:"disable_ocr"`
	DisableLayout   bool   `toml:"disable_layout"`
	DisableEmbedded bool   `toml:"disable_embedded"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Pdftotext string
	Pdftoppm  string
	Magick    string
	Tesseract string
	DPI       string
	Language  string
	MaxPages  string
	Workers   string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Boolean switches always apply.
func (c *Config) Merge(overlay *Config) {
	if overlay.Pdftotext != "" {
		c.Pdftotext = overlay.Pdftotext
	}
	if overlay.Pdftoppm != "" {
		c.Pdftoppm = overlay.Pdftoppm
	}
	if overlay.Magick != "" {
		c.Magick = overlay.Magick
	}
	if overlay.Tesseract != "" {
		c.Tesseract = overlay.Tesseract
	}
	if overlay.DPI != 0 {
		c.DPI = overlay.DPI
	}
	if overlay.Language != "" {
		c.Language = overlay.Language
	}
	if overlay.PSM != 0 {
		c.PSM = overlay.PSM
	}
	if overlay.Threshold != "" {
		c.Threshold = overlay.Threshold
	}
	if overlay.MaxPages != 0 {
		c.MaxPages = overlay.MaxPages
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	c.DisableOCR = overlay.DisableOCR
	c.DisableLayout = overlay.DisableLayout
	c.DisableEmbedded = overlay.DisableEmbedded
}

func (c *Config) loadDefaults() {
	if c.Pdftotext == "" {
		c.Pdftotext = "pdftotext"
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Magick == "" {
		c.Magick = "magick"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.DPI == 0 {
		c.DPI = 300
	}
	if c.Language == "" {
		c.Language = "eng+deu"
	}
	if c.PSM == 0 {
		c.PSM = 6
	}
	if c.Threshold == "" {
		c.Threshold = "55%"
	}
	if c.Workers == 0 {
		c.Workers = max(min(runtime.NumCPU(), 4), 1)
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Pdftotext != "" {
		if v := os.Getenv(env.Pdftotext); v != "" {
			c.Pdftotext = v
		}
	}
	if env.Pdftoppm != "" {
		if v := os.Getenv(env.Pdftoppm); v != "" {
			c.Pdftoppm = v
		}
	}
	if env.Magick != "" {
		if v := os.Getenv(env.Magick); v != "" {
			c.Magick = v
		}
	}
	if env.Tesseract != "" {
		if v := os.Getenv(env.Tesseract); v != "" {
			c.Tesseract = v
		}
	}
	if env.DPI != "" {
		if v := os.Getenv(env.DPI); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.DPI = n
			}
		}
	}
	if env.Language != "" {
		if v := os.Getenv(env.Language); v != "" {
			c.Language = v
		}
	}
	if env.MaxPages != "" {
		if v := os.Getenv(env.MaxPages); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxPages = n
			}
		}
	}
	if env.Workers != "" {
		if v := os.Getenv(env.Workers); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Workers = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.DPI < 72 || c.DPI > 1200 {
		return fmt.Errorf("invalid dpi: %d", c.DPI)
	}
	if c.PSM < 0 || c.PSM > 13 {
		return fmt.Errorf("invalid psm: %d", c.PSM)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max_pages must not be negative")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if c.DisableOCR && c.DisableLayout && c.DisableEmbedded {
		return fmt.Errorf("at least one strategy must be enabled")
	}
	return nil
}
