package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Loader handles loading of question/answer datasets
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// BaseDir is the directory relative image paths are resolved against.
func (l *Loader) BaseDir() string {
	return filepath.Dir(l.datasetPath)
}

// Load loads every item from a dataset file (Parquet, JSONL or YAML)
func (l *Loader) Load() ([]Item, error) {
	return l.LoadSample(-1)
}

// LoadSample loads at most limit items; a negative limit loads everything.
func (l *Loader) LoadSample(limit int) ([]Item, error) {
	var (
		items []Item
		err   error
	)

	ext := strings.ToLower(filepath.Ext(l.datasetPath))
	switch ext {
	case ".parquet":
		items, err = l.loadParquet(limit)
	case ".jsonl", ".json":
		items, err = l.loadJSONL(limit)
	case ".yaml", ".yml":
		items, err = l.loadYAML()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl, .yaml)", ext)
	}
	if err != nil {
		return nil, err
	}

	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("item-%d", i+1)
		}
		if err := items[i].Validate(); err != nil {
			return nil, err
		}
	}

	slog.Debug("Dataset loaded", "path", l.datasetPath, "items", len(items))
	return items, nil
}

// loadJSONL loads items from a JSONL file
func (l *Loader) loadJSONL(limit int) ([]Item, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var items []Item
	scanner := bufio.NewScanner(file)

	// Increase buffer size for large JSON lines
	const maxCapacity = 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit >= 0 && len(items) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var item Item
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}

		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	return items, nil
}

func (l *Loader) loadYAML() ([]Item, error) {
	data, err := os.ReadFile(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}

	var doc struct {
		Items []Item `yaml:"items"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return doc.Items, nil
}

// loadParquet loads items from a Parquet file
func (l *Loader) loadParquet(limit int) ([]Item, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Item](pf)
	defer reader.Close()

	var items []Item
	rows := make([]Item, 128)

	for limit < 0 || len(items) < limit {
		n, err := reader.Read(rows)
		items = append(items, rows[:n]...)
		if err != nil {
			break
		}
	}

	return items, nil
}
