// Package config defines the settings of a tzpack run and provides helpers
// to load, validate and save them in YAML format.
//
// Settings name the upstream URLs, the staging directory, the three outputs
// (zone table, version marker, manifest) and the table format.
package config
