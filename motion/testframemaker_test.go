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
	"github.com/TheCacophonyProject/motion-recorder/frame"
)

const (
	makerWidth  = 40
	makerHeight = 30
	spotSize    = 8
	spotStep    = 10
)

// TestFrameMaker plays scenes of a still background, or a bright square
// jumping across it, through a MotionProcessor.
type TestFrameMaker struct {
	frameCounter  int
	processor     *MotionProcessor
	BackgroundVal byte
	BrightSpotVal byte
	spotMoves     int
	errs          []error
}

func MakeTestFrameMaker(motionProcessor *MotionProcessor) *TestFrameMaker {
	return &TestFrameMaker{
		processor:     motionProcessor,
		BackgroundVal: 40,
		BrightSpotVal: 100,
	}
}

func (tfm *TestFrameMaker) AddBackgroundFrames(frames int) *TestFrameMaker {
	for i := 0; i < frames; i++ {
		tfm.PlayFrame(tfm.makeFrame())
	}
	return tfm
}

func (tfm *TestFrameMaker) AddMovingDotFrames(frames int) *TestFrameMaker {
	for i := 0; i < frames; i++ {
		position := (tfm.spotMoves % 4) * spotStep
		tfm.spotMoves++
		tfm.PlayFrame(tfm.makeFrameWithBrightSpot(position))
	}
	return tfm
}

func (tfm *TestFrameMaker) PlayFrame(f *frame.Frame) {
	if err := tfm.processor.Process(f); err != nil {
		tfm.errs = append(tfm.errs, err)
	}
}

func (tfm *TestFrameMaker) makeFrame() *frame.Frame {
	f := frame.New(makerWidth, makerHeight, frame.Gray)
	for i := range f.Pix {
		f.Pix[i] = tfm.BackgroundVal
	}
	f.Index = tfm.frameCounter
	tfm.frameCounter++
	return f
}

func (tfm *TestFrameMaker) makeFrameWithBrightSpot(position int) *frame.Frame {
	f := tfm.makeFrame()
	for y := 2; y < 2+spotSize; y++ {
		for x := position; x < position+spotSize; x++ {
			f.Pix[y*makerWidth+x] = tfm.BackgroundVal + tfm.BrightSpotVal
		}
	}
	return f
}
