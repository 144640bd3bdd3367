package config

import "time"

type Worker struct {
	ArchiveInterval time.Duration `env:"ARCHIVE_INTERVAL" envDefault:"1m"`
}
