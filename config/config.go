// Package config loads, validates and writes the locsync configuration
// file (.locsync.json), which declares the push sources and pull targets
// of a project.
//
// The file is looked up in this order:
//  1. the current directory
//  2. the directory named by $LOCSYNC_CONFIG
//  3. the home directory
//
// When none exists, the current-directory path is returned so that
// "locsync init" writes the file there.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the default config file name.
const FileName = ".locsync.json"

// altFileNames are accepted next to FileName, in lookup order.
var altFileNames = []string{".locsync.yaml", ".locsync.yml"}

// Environment variables.
const (
	EnvConfigDir   = "LOCSYNC_CONFIG"
	EnvAccessToken = "LOCSYNC_ACCESS_TOKEN"
)

// FindFile returns the config file path for the working directory dir and
// whether the file exists.
func FindFile(dir string) (string, bool) {
	dirs := []string{dir}
	if envDir := os.Getenv(EnvConfigDir); envDir != "" {
		dirs = append(dirs, envDir)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	}

	for _, d := range dirs {
		if path, ok := findIn(d); ok {
			return path, true
		}
	}
	return filepath.Join(dir, FileName), false
}

func findIn(dir string) (string, bool) {
	for _, name := range append([]string{FileName}, altFileNames...) {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Write stores the configuration as indented JSON. The file holds the access
// token, so it is written owner-readable only.
func Write(path string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	f.path = path
	return nil
}

// NewFromFormat builds the starter configuration "locsync init" writes:
// one source block in the base language and a placeholder target block
// excluding it. Formats with a dedicated base-language file (Android, iOS)
// additionally pull the base language into basePath with export_empty set.
func NewFromFormat(token, baseLanguage string, format Format, sourcePath, targetPath, basePath, tag string) *File {
	var tags Tag
	if tag != "" {
		tags = Tag{tag}
	}

	target := FileBlock{
		Path:             targetPath,
		FileFormat:       format.ID,
		ExcludeLanguages: []string{baseLanguage},
		Tag:              tags,
	}

	f := &File{App: App{
		AccessToken:  token,
		BaseLanguage: baseLanguage,
		Push: &Push{Source: []FileBlock{{
			Path:       sourcePath,
			FileFormat: format.ID,
			Language:   baseLanguage,
			Tag:        tags,
		}}},
		Pull: &Pull{Target: []FileBlock{target}},
	}}

	if basePath != "" {
		f.App.Push.Source[0].Path = basePath
		base := FileBlock{
			Path:          basePath,
			FileFormat:    format.ID,
			Language:      baseLanguage,
			Tag:           tags,
			FormatOptions: FormatOptions{ExportEmpty: true},
		}
		f.App.Pull.Target = []FileBlock{base, target}
	}
	return f
}
