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

package motion

import (
	"errors"
	"sync"
)

type MotionConfig struct {
	// PixelThreshold is the gray level change a pixel needs before it
	// counts as changed.
	PixelThreshold int `yaml:"pixel-threshold"`
	// Sensitivity is the fraction of the frame that must be changing
	// for a frame to count as motion.
	Sensitivity       float64 `yaml:"sensitivity"`
	ErosionKernelSize int     `yaml:"erosion-kernel-size"`
	Verbose           bool    `yaml:"-"`
}

func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		PixelThreshold:    7,
		Sensitivity:       0.02,
		ErosionKernelSize: 2,
	}
}

func (conf *MotionConfig) Validate() error {
	if conf.PixelThreshold < 0 || conf.PixelThreshold > 255 {
		return errors.New("pixel-threshold must be between 0 and 255")
	}
	if conf.Sensitivity <= 0 || conf.Sensitivity >= 1 {
		return errors.New("sensitivity must be greater than 0 and less than 1")
	}
	if conf.ErosionKernelSize < 1 {
		return errors.New("erosion-kernel-size must be at least 1")
	}
	return nil
}

// Params holds the detector settings that can be changed while frames
// are being processed. The detector takes a copy at the start of each
// frame.
type Params struct {
	mu   sync.Mutex
	conf MotionConfig
}

func NewParams(conf MotionConfig) *Params {
	return &Params{conf: conf}
}

func (p *Params) Get() MotionConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conf
}

// Set replaces the settings if they are valid.
func (p *Params) Set(conf MotionConfig) error {
	if err := conf.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.conf = conf
	p.mu.Unlock()
	return nil
}
