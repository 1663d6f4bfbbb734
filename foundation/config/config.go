package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func GetRoom(roomConfigPath string, roomName string) (Room, error) {
	file, err := os.Open(roomConfigPath)
	if err != nil {
		return Room{}, err
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Room{}, err
	}

	var config Config

	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return Room{}, err
	}
	room, exists := roomExists(config.Rooms, roomName)
	if !exists {
		return Room{}, fmt.Errorf("room[%s] does not exist", roomName)
	}

	if err := room.validate(); err != nil {
		return Room{}, err
	}

	return room, nil
}

func (r Room) validate() error {
	if r.Slots < 0 {
		return fmt.Errorf("room[%s]: slots[%d] cannot be negative", r.Name, r.Slots)
	}
	if r.Interval < 0 {
		return fmt.Errorf("room[%s]: interval[%s] cannot be negative", r.Name, r.Interval)
	}
	switch r.FaceMode {
	case "", "detect", "recognize":
	default:
		return fmt.Errorf("room[%s]: unknown face_mode[%s]", r.Name, r.FaceMode)
	}
	return nil
}

// Merge fills the zero fields of r from the defaults.
func (r Room) Merge(slots int, interval time.Duration, admitWithoutTile bool, faceMode string) Room {
	if r.Slots == 0 {
		r.Slots = slots
	}
	if r.Interval == 0 {
		r.Interval = interval
	}
	if r.AdmitWithoutTile == nil {
		r.AdmitWithoutTile = &admitWithoutTile
	}
	if r.FaceMode == "" {
		r.FaceMode = faceMode
	}
	return r
}

func roomExists(rooms []Room, roomName string) (Room, bool) {
	for _, room := range rooms {
		if room.Name == roomName {
			return room, true
		}
	}
	return Room{}, false
}
