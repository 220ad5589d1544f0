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
	"fmt"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

// noFrames marks an empty loop. The next Add goes into slot 0.
const noFrames = -1

// FrameWriter receives frames replayed from a FrameLoop.
type FrameWriter interface {
	WriteFrame(*frame.Frame) error
}

func NewFrameLoop(size int) *FrameLoop {
	if size < 0 {
		panic(fmt.Sprintf("negative frame loop size %d", size))
	}
	return &FrameLoop{
		size:   size,
		frames: make([]frame.Frame, size),
		newest: noFrames,
	}
}

// FrameLoop keeps copies of the last n frames added to it so they can be
// replayed, oldest first, when a recording starts. A size of 0 disables
// it.
type FrameLoop struct {
	size   int
	frames []frame.Frame
	newest int
	count  int
}

func (fl *FrameLoop) nextIndexAfter(index int) int {
	return (index + 1) % fl.size
}

// Add copies f into the loop, overwriting the oldest frame once the loop
// is full.
func (fl *FrameLoop) Add(f *frame.Frame) {
	if fl.size == 0 {
		return
	}
	fl.newest = fl.nextIndexAfter(fl.newest)
	fl.frames[fl.newest].CopyFrom(f)
	if fl.count < fl.size {
		fl.count++
	}
}

// Drain writes every stored frame to w from oldest to newest and then
// empties the loop. The loop is emptied even when w fails; the frames
// that were not written are dropped.
func (fl *FrameLoop) Drain(w FrameWriter) error {
	if fl.count == 0 {
		return nil
	}
	defer fl.reset()

	oldest := (fl.newest - fl.count + 1 + fl.size) % fl.size
	for i := 0; i < fl.count; i++ {
		if err := w.WriteFrame(&fl.frames[(oldest+i)%fl.size]); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every stored frame.
func (fl *FrameLoop) Clear() {
	fl.reset()
}

func (fl *FrameLoop) reset() {
	fl.count = 0
	fl.newest = noFrames
}

// Len returns the number of frames that a Drain would write.
func (fl *FrameLoop) Len() int {
	return fl.count
}

// Size returns the capacity of the loop.
func (fl *FrameLoop) Size() int {
	return fl.size
}

// Newest returns the most recently added frame or nil if the loop is
// empty. The frame is overwritten by later calls to Add.
func (fl *FrameLoop) Newest() *frame.Frame {
	if fl.count == 0 {
		return nil
	}
	return &fl.frames[fl.newest]
}
