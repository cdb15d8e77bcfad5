// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that merges several
// sources using koanf as the underlying library, plus an fsnotify based
// watcher for hot reload of the configuration file.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (applied with LoadMap)
//  2. Environment variables (KEYFORGE_SECTION_KEY)
//  3. Configuration file (YAML)
//  4. Default values
package confloader
