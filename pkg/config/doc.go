// Package config defines the tracking configuration for the wiretap engine
// and the on-disk project file (wiretap.yaml) that carries it.
//
// Configuration is layered: Default() supplies the baseline, a discovered
// project file may override it, and programmatic partial configs merge on
// top. Boolean options use *bool so an unset field is distinguishable from
// an explicit false and merges leave it untouched.
package config
