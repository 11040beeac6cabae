// Package charts renders interactive Chart.js visualizations.
package charts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/isdmx/databox/config"
)

// Chart type constants
const (
	TypeBar  = "bar"
	TypePie  = "pie"
	TypeLine = "line"
)

// File permission constants
const (
	DirPermission  = 0755
	FilePermission = 0600
)

// Sentinel errors for chart generation failures
var (
	ErrDisabled      = errors.New("chart generation is disabled")
	ErrNoData        = errors.New("chart data must contain at least one column")
	ErrNoNumericData = errors.New("chart data must contain at least one numeric column")
	ErrUnknownType   = errors.New("unknown chart type, must be one of: bar, pie, line")
	ErrRaggedColumns = errors.New("chart data columns must all have the same length")
)

// FileSystem defines an interface for file system operations
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(filename string, data []byte, perm os.FileMode) error
}

// RealFileSystem implements FileSystem using actual file system operations
type RealFileSystem struct{}

func (RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

// Renderer writes Chart.js HTML documents for tabular data.
type Renderer struct {
	enabled bool
	dir     string
	fs      FileSystem
	logger  *zap.Logger
}

// New creates a renderer from the application's charts configuration.
func New(cfg *config.Config, logger *zap.Logger) *Renderer {
	return &Renderer{
		enabled: cfg.Charts.Enabled,
		dir:     cfg.Charts.Dir,
		fs:      RealFileSystem{},
		logger:  logger,
	}
}

// NewWithFileSystem creates a renderer with a custom file system, used in tests.
func NewWithFileSystem(cfg *config.Config, logger *zap.Logger, fs FileSystem) *Renderer {
	r := New(cfg, logger)
	r.fs = fs
	return r
}

// Generate renders one chart of the given type from column-oriented data and
// returns the path of the written HTML file. Data maps column names to their
// values; one non-numeric column supplies the axis labels and every numeric
// column becomes a dataset (pie charts use only the first numeric column).
func (r *Renderer) Generate(data map[string][]any, chartType, title string) (string, error) {
	if !r.enabled {
		return "", ErrDisabled
	}

	switch chartType {
	case TypeBar, TypePie, TypeLine:
	default:
		return "", fmt.Errorf("%w: got %q", ErrUnknownType, chartType)
	}

	if title == "" {
		title = "Data Visualization"
	}

	page, err := buildPage(data, chartType, title)
	if err != nil {
		return "", err
	}

	html, err := renderPage(page)
	if err != nil {
		return "", fmt.Errorf("failed to render chart template: %w", err)
	}

	if err := r.fs.MkdirAll(r.dir, DirPermission); err != nil {
		return "", fmt.Errorf("failed to create charts directory: %w", err)
	}

	filename := fmt.Sprintf("chart_%s_%s.html", chartType, uuid.New().String())
	path := filepath.Join(r.dir, filename)
	if err := r.fs.WriteFile(path, html, FilePermission); err != nil {
		return "", fmt.Errorf("failed to write chart file: %w", err)
	}

	r.logger.Info("Chart generated",
		zap.String("type", chartType),
		zap.String("path", path),
		zap.Int("datasets", len(page.Datasets)))

	return path, nil
}
