package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/coregx/gridsearch"
)

// loadConfig reads settings from path onto the defaults. The format follows
// the file extension. An empty path yields the defaults.
func loadConfig(path string) (gridsearch.Config, error) {
	config := gridsearch.DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return config, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}
	if err != nil {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// decodeInput converts data in the named encoding to UTF-8. A byte order
// mark overrides the named encoding; "auto" assumes UTF-8 without one.
// Invalid sequences become U+FFFD.
func decodeInput(data []byte, name string) (string, error) {
	var dec transform.Transformer
	switch name {
	case "", "auto", "utf8", "utf-8":
		dec = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	case "utf16le", "utf-16le":
		dec = unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder())
	case "utf16be", "utf-16be":
		dec = unicode.BOMOverride(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder())
	default:
		return "", fmt.Errorf("unknown encoding %q", name)
	}

	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
