package config

import "time"

type Config struct {
	Rooms []Room `yaml:"rooms"`
}

// Room holds the per-room overrides of the service defaults. Zero values
// mean "use the default".
type Room struct {
	Name             string        `yaml:"name"`
	Slots            int           `yaml:"slots"`
	Interval         time.Duration `yaml:"interval"`
	AdmitWithoutTile *bool         `yaml:"admit_without_tile"`
	PresenterOnly    bool          `yaml:"presenter_only"`
	FaceMode         string        `yaml:"face_mode"`
}
