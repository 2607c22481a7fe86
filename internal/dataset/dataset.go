// Package dataset reads and writes tracker data files. YAML documents go through
// the JSON codecs of the domain types so both formats share one field layout.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gamenight-tracker/internal/domain"
)

// Format is a file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// FormatOf guesses the format from a file extension, defaulting to YAML
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads a snapshot from a file
func Load(path string) (domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	return Decode(f, FormatOf(path))
}

// Decode reads a snapshot in the given format
func Decode(r io.Reader, format Format) (domain.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("reading dataset: %w", err)
	}

	if format == FormatYAML {
		data, err = yamlToJSON(data)
		if err != nil {
			return domain.Snapshot{}, err
		}
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding dataset: %w", err)
	}
	if err := defaultVisibility(data, snap.Players); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// Encode writes any JSON-encodable value. YAML output keeps the JSON field names.
func Encode(w io.Writer, v interface{}, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func yamlToJSON(data []byte) ([]byte, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parsing yaml dataset: %w", err)
	}
	if generic == nil {
		return []byte("{}"), nil
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("converting yaml dataset: %w", err)
	}
	return out, nil
}

// defaultVisibility shows every player whose entry omits show_on_leaderboard
func defaultVisibility(data []byte, players []domain.Player) error {
	var raw struct {
		Players []struct {
			Show *bool `json:"show_on_leaderboard"`
		} `json:"players"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding dataset: %w", err)
	}
	for i := range players {
		if i < len(raw.Players) && raw.Players[i].Show == nil {
			players[i].ShowOnLeaderboard = true
		}
	}
	return nil
}
