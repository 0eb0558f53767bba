package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all user-facing configuration for histmap.
type Config struct {
	Data    DataConfig    `toml:"data"`
	Server  ServerConfig  `toml:"server"`
	Geodata GeodataConfig `toml:"geodata"`
	Wiki    WikiConfig    `toml:"wiki"`
	Ollama  OllamaConfig  `toml:"ollama"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type GeodataConfig struct {
	OverpassURL  string  `toml:"overpass_url"`
	NominatimURL string  `toml:"nominatim_url"`
	RadiusMeters int     `toml:"radius_meters"`
	RateLimit    float64 `toml:"rate_limit"`
}

type WikiConfig struct {
	WikipediaURL string `toml:"wikipedia_url"`
	WikidataURL  string `toml:"wikidata_url"`
	MaxTextLen   int    `toml:"max_text_len"`
}

type OllamaConfig struct {
	URL         string  `toml:"url"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Data:   DataConfig{Dir: "data"},
		Server: ServerConfig{Host: "localhost", Port: 8080},
		Geodata: GeodataConfig{
			OverpassURL:  "https://overpass-api.de/api/interpreter",
			NominatimURL: "https://nominatim.openstreetmap.org/search",
			RadiusMeters: 1000,
			RateLimit:    1.0,
		},
		Wiki: WikiConfig{
			WikipediaURL: "https://en.wikipedia.org/w/api.php",
			WikidataURL:  "https://www.wikidata.org/w/api.php",
			MaxTextLen:   2000,
		},
		Ollama: OllamaConfig{
			URL:         "http://localhost:11434/api/generate",
			Model:       "llama2",
			Temperature: 0.3,
		},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
