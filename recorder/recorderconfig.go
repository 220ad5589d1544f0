// motion-recorder - record video segments around detected motion
//  Copyright (C) 2018, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package recorder

import (
	"errors"
	"fmt"

	config "github.com/TheCacophonyProject/go-config"
	"github.com/TheCacophonyProject/window"
)

const (
	maxLatitude  = 90
	maxLongitude = 180
)

type RecorderConfig struct {
	PreRollSecs  float64 `yaml:"pre-roll-seconds"`
	PostRollSecs float64 `yaml:"post-roll-seconds"`
	// MaxSecs limits the length of a segment. 0 means no limit.
	MaxSecs     float64 `yaml:"max-seconds"`
	WindowStart string  `yaml:"window-start"`
	WindowEnd   string  `yaml:"window-end"`
	Latitude    float32 `yaml:"latitude"`
	Longitude   float32 `yaml:"longitude"`
}

func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		PreRollSecs:  1,
		PostRollSecs: 1,
	}
}

// Frames are the recorder settings converted to frame counts for a
// particular frame rate.
type Frames struct {
	PreRoll  int
	PostRoll int
	Max      int
}

func (conf *RecorderConfig) Validate() error {
	if conf.PreRollSecs < 0 {
		return errors.New("pre-roll-seconds can't be negative")
	}
	if conf.PostRollSecs < 0 {
		return errors.New("post-roll-seconds can't be negative")
	}
	if conf.MaxSecs < 0 {
		return errors.New("max-seconds can't be negative")
	}
	if conf.MaxSecs > 0 && conf.MaxSecs <= conf.PreRollSecs {
		return errors.New("max-seconds should be larger than pre-roll-seconds")
	}
	if conf.Latitude < -maxLatitude || conf.Latitude > maxLatitude {
		return errors.New("latitude outside of normal range")
	}
	if conf.Longitude < -maxLongitude || conf.Longitude > maxLongitude {
		return errors.New("longitude outside of normal range")
	}
	if conf.WindowStart != "" && conf.WindowEnd == "" {
		return errors.New("window-start is set but window-end isn't")
	}
	if conf.WindowEnd != "" && conf.WindowStart == "" {
		return errors.New("window-end is set but window-start isn't")
	}
	if _, err := conf.NewWindow(); err != nil {
		return err
	}
	return nil
}

// Frames converts the durations to whole frames at fps. A pre-roll that
// is set but shorter than one frame is an error as it would silently
// disable the pre-roll.
func (conf *RecorderConfig) Frames(fps float64) (Frames, error) {
	if fps <= 0 {
		return Frames{}, fmt.Errorf("invalid frame rate %v", fps)
	}
	frames := Frames{
		PreRoll:  int(conf.PreRollSecs * fps),
		PostRoll: int(conf.PostRollSecs * fps),
		Max:      int(conf.MaxSecs * fps),
	}
	if conf.PreRollSecs > 0 && frames.PreRoll <= 0 {
		return Frames{}, fmt.Errorf("pre-roll of %vs is less than one frame at %v fps", conf.PreRollSecs, fps)
	}
	if conf.MaxSecs > 0 && frames.Max <= frames.PreRoll {
		return Frames{}, fmt.Errorf("max-seconds of %vs leaves no room after the pre-roll at %v fps", conf.MaxSecs, fps)
	}
	return frames, nil
}

// NewWindow returns the recording window, or nil if recordings may start
// at any time.
func (conf *RecorderConfig) NewWindow() (*window.Window, error) {
	if conf.WindowStart == "" && conf.WindowEnd == "" {
		return nil, nil
	}
	return window.New(
		conf.WindowStart,
		conf.WindowEnd,
		float64(conf.Latitude),
		float64(conf.Longitude))
}

// LoadDeviceConfig replaces the window and location settings with those
// held in the device wide configuration.
func (conf *RecorderConfig) LoadDeviceConfig(deviceConf *config.Config) error {
	windowLocationConfig := config.DefaultWindowLocation()
	if err := deviceConf.Unmarshal(config.LocationKey, &windowLocationConfig); err != nil {
		return err
	}
	windowsConfig := config.DefaultWindows()
	if err := deviceConf.Unmarshal(config.WindowsKey, &windowsConfig); err != nil {
		return err
	}

	conf.WindowStart = windowsConfig.StartRecording
	conf.WindowEnd = windowsConfig.StopRecording
	conf.Latitude = windowLocationConfig.Latitude
	conf.Longitude = windowLocationConfig.Longitude
	return conf.Validate()
}
