// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/workspace"
)

// Option configures an exported command factory (BindCommand, LintCommand,
// ...).
type Option func(*cmdConfig)

type cmdConfig struct {
	log      logrus.FieldLogger
	features binder.Features
	profiler binder.Profiler
	// set records which fields were given as options and so take
	// precedence over the configuration file.
	setFeatures, setProfiler bool
}

// WithLogger sets the logger commands and the analyses they run log to.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *cmdConfig) { c.log = log }
}

// WithFeatures enables optional language features for every expression,
// replacing the features named in the configuration file.
func WithFeatures(f binder.Features) Option {
	return func(c *cmdConfig) {
		c.features = f
		c.setFeatures = true
	}
}

// WithProfiler sets a profiler notified of every bind, replacing the
// trace.exporter configuration.
func WithProfiler(p binder.Profiler) Option {
	return func(c *cmdConfig) {
		c.profiler = p
		c.setProfiler = true
	}
}

// resolveConfig applies opts over the settings read by viper. It runs when
// a command executes, after the configuration file has been read.
func resolveConfig(opts []Option) *cmdConfig {
	c := &cmdConfig{}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if !c.setFeatures && viper.GetBool(keyNonTrailingNamedArguments) {
		c.features |= binder.FeatureNonTrailingNamedArguments
	}
	if !c.setProfiler {
		c.profiler = newProfiler(viper.GetString(keyTraceExporter), c.log)
	}
	return c
}

func (c *cmdConfig) workspaceOptions() []workspace.Option {
	return []workspace.Option{
		workspace.WithLogger(c.log),
		workspace.WithFeatures(c.features),
	}
}

func (c *cmdConfig) analysisConfig() *analysis.Config {
	return &analysis.Config{
		Logger:   c.log,
		Profiler: c.profiler,
	}
}

func colorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(viper.GetString(keyColor))
	if err != nil {
		logrus.WithError(err).Warn("using automatic color")
	}
	return mode
}
