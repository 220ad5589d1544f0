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
	"github.com/TheCacophonyProject/motion-recorder/motion"
)

// listeners passes every recording event on to each listener in turn.
type listeners []motion.RecordingListener

func (ls listeners) MotionDetected() {
	for _, l := range ls {
		l.MotionDetected()
	}
}

func (ls listeners) RecordingStarted(index int) {
	for _, l := range ls {
		l.RecordingStarted(index)
	}
}

func (ls listeners) RecordingEnded() {
	for _, l := range ls {
		l.RecordingEnded()
	}
}

func (ls listeners) RecordingFailed(err error) {
	for _, l := range ls {
		l.RecordingFailed(err)
	}
}
