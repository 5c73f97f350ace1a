// Package registryfile reads the YAML/JSON registry files behind profiles
// and sinks.
package registryfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type decoder struct {
	name string
	ext  string
	fn   func([]byte, any) error
}

var decoders = []decoder{
	{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
	{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
	{name: "json", ext: ".json", fn: json.Unmarshal},
}

// Load reads path and decodes it into out. kind names the registry in
// error messages ("profiles", "sinks").
func Load(path, kind string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%s file path is empty", kind)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s file: %w", kind, err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read %s file: %w", kind, err)
	}

	return Decode(raw, filepath.Ext(path), kind, out)
}

// Decode picks a decoder from ext, or tries each one when ext is empty.
func Decode(data []byte, ext, kind string, out any) error {
	ext = strings.ToLower(strings.TrimSpace(ext))
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if err := d.fn(data, out); err == nil {
			return nil
		}
	}
	return errors.New(kind + " file format not recognized (expected YAML or JSON)")
}
