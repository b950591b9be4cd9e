// Package config provides configuration structures and utilities for
// maildigest. It defines the options for mailbox polling, document
// processing concurrency, caption pacing, and report generation
// preferences, along with the optional .maildigest YAML file loader.
package config
