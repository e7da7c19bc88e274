package scraper

import (
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultSourcesYAML []byte

// SourceConfig is one entry of the sources file
type SourceConfig struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type sourcesFile struct {
	Sources []SourceConfig `yaml:"sources"`
}

// LoadSourceConfigs parses a sources file; nil data means the embedded default
func LoadSourceConfigs(data []byte) ([]SourceConfig, error) {
	if data == nil {
		data = defaultSourcesYAML
	}
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}
	return f.Sources, nil
}

// NewSource builds the Source for one config entry
func NewSource(cfg SourceConfig, client *http.Client) (Source, error) {
	switch cfg.Kind {
	case "cwl":
		return NewCWLSource(cfg.Name, cfg.URL, client), nil
	case "datachart":
		return NewDataChartSource(cfg.Name, cfg.URL, client), nil
	case "textpage":
		return NewTextPageSource(cfg.Name, cfg.URL, client), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q for %s", cfg.Kind, cfg.Name)
	}
}

// NewChain builds a chain of the enabled sources, in file order, with the
// synthetic fallback
func NewChain(cfgs []SourceConfig, client *http.Client) (*Chain, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	chain := &Chain{Fallback: NewSyntheticSource()}
	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		src, err := NewSource(cfg, client)
		if err != nil {
			return nil, err
		}
		chain.Sources = append(chain.Sources, src)
	}
	return chain, nil
}
