package config

import "path/filepath"

// Paths resolves application file locations from the configured roots.
type Paths struct {
	DataDir    string
	ReportsDir string
}

// NewPaths creates a Paths resolver from configuration
func NewPaths(cfg PathsConfig) *Paths {
	return &Paths{
		DataDir:    cfg.DataDir,
		ReportsDir: cfg.ReportsDir,
	}
}

// GetReportPath returns the full path of a generated report file
func (p *Paths) GetReportPath(name string) string {
	return filepath.Join(p.ReportsDir, name)
}

// GetDataPath returns the full path of a file under the data directory
func (p *Paths) GetDataPath(name string) string {
	return filepath.Join(p.DataDir, name)
}
