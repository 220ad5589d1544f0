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
	"log"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

type levelSetter interface {
	Out(l gpio.Level) error
}

// recordingLED is lit while a segment is open.
type recordingLED struct {
	pin levelSetter
}

func newRecordingLED(pinName string) (*recordingLED, error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("unknown LED pin %q", pinName)
	}
	led := &recordingLED{pin: pin}
	if err := led.set(gpio.Low); err != nil {
		return nil, err
	}
	return led, nil
}

func (led *recordingLED) MotionDetected()       {}
func (led *recordingLED) RecordingFailed(error) {}

func (led *recordingLED) RecordingStarted(int) {
	if err := led.set(gpio.High); err != nil {
		log.Print(err)
	}
}

func (led *recordingLED) RecordingEnded() {
	if err := led.set(gpio.Low); err != nil {
		log.Print(err)
	}
}

func (led *recordingLED) set(l gpio.Level) error {
	if err := led.pin.Out(l); err != nil {
		return fmt.Errorf("failed to set recording LED %v: %v", l, err)
	}
	return nil
}
