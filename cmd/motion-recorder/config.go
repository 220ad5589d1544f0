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

package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/motion-recorder/motion"
	"github.com/TheCacophonyProject/motion-recorder/output"
	"github.com/TheCacophonyProject/motion-recorder/recorder"
	"github.com/TheCacophonyProject/motion-recorder/throttle"
)

const (
	formatMP4  = "mp4"
	formatCPTV = "cptv"
)

type Config struct {
	DeviceName     string                   `yaml:"device-name"`
	OutputDir      string                   `yaml:"output-dir"`
	OutputFormat   string                   `yaml:"output-format"`
	Codec          string                   `yaml:"codec"`
	MinDiskSpace   uint64                   `yaml:"min-disk-space"`
	Verbose        bool                     `yaml:"verbose"`
	MetricsAddress string                   `yaml:"metrics-address"`
	DBusService    bool                     `yaml:"dbus-service"`
	Events         bool                     `yaml:"events"`
	Recorder       recorder.RecorderConfig  `yaml:"recorder"`
	Motion         motion.MotionConfig      `yaml:"motion"`
	Throttler      throttle.ThrottlerConfig `yaml:"throttler"`
	LEDs           LEDsConfig               `yaml:"leds"`
}

type LEDsConfig struct {
	Recording string `yaml:"recording"`
}

func (conf *Config) Validate() error {
	switch conf.OutputFormat {
	case formatMP4, formatCPTV:
	default:
		return fmt.Errorf("unknown output-format %q", conf.OutputFormat)
	}

	if err := conf.Recorder.Validate(); err != nil {
		return err
	}

	if err := conf.Motion.Validate(); err != nil {
		return err
	}

	if err := conf.Throttler.Validate(); err != nil {
		return err
	}

	return nil
}

// Ext is the file extension of the segments written.
func (conf *Config) Ext() string {
	if conf.OutputFormat == formatCPTV {
		return output.CPTVExt
	}
	return output.VideoExt
}

func defaultConfig() Config {
	return Config{
		OutputDir:    ".",
		OutputFormat: formatMP4,
		Codec:        output.DefaultCodec,
		MinDiskSpace: 200,
		Recorder:     recorder.DefaultRecorderConfig(),
		Motion:       motion.DefaultMotionConfig(),
		Throttler:    throttle.DefaultThrottlerConfig(),
	}
}

// ParseConfigFile reads the configuration in filename. A missing file
// gives the defaults.
func ParseConfigFile(filename string) (*Config, error) {
	buf, err := ioutil.ReadFile(filename)
	if os.IsNotExist(err) {
		log.Printf("%s not found, using default configuration", filename)
		buf = nil
	} else if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig()
	if err := yaml.UnmarshalStrict(buf, &conf); err != nil {
		return nil, err
	}
	conf.Motion.Verbose = conf.Verbose

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}
