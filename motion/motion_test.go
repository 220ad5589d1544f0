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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

const (
	testWidth  = 10
	testHeight = 10
)

type grayGen struct {
	background byte
}

func (g *grayGen) frame() *frame.Frame {
	f := frame.New(testWidth, testHeight, frame.Gray)
	for i := range f.Pix {
		f.Pix[i] = g.background
	}
	return f
}

func (g *grayGen) withPixels(value byte, points ...[2]int) *frame.Frame {
	f := g.frame()
	for _, p := range points {
		f.Pix[p[1]*testWidth+p[0]] = value
	}
	return f
}

func block(x0, y0, size int) [][2]int {
	var points [][2]int
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			points = append(points, [2]int{x, y})
		}
	}
	return points
}

func newTestDetector(sensitivity float64, kernel int) *Detector {
	conf := DefaultMotionConfig()
	conf.Sensitivity = sensitivity
	conf.ErosionKernelSize = kernel
	return NewMotionDetector(NewParams(conf))
}

func TestNoMotionUntilTwoFramesSeen(t *testing.T) {
	d := newTestDetector(0.001, 1)
	gen := &grayGen{background: 10}

	assert.False(t, d.Detect(gen.frame()))
	assert.False(t, d.Detect(gen.withPixels(200, block(0, 0, 10)...)))
	assert.True(t, d.Detect(gen.frame()))
}

func TestIdenticalFramesNeverShowMotion(t *testing.T) {
	for _, thresh := range []int{0, 7, 255} {
		conf := DefaultMotionConfig()
		conf.PixelThreshold = thresh
		conf.Sensitivity = 0.0001
		conf.ErosionKernelSize = 1
		d := NewMotionDetector(NewParams(conf))
		gen := &grayGen{background: 120}
		for i := 0; i < 10; i++ {
			assert.False(t, d.Detect(gen.frame()))
			assert.Equal(t, 0.0, d.Ratio())
		}
	}
}

func TestSinglePixelRatio(t *testing.T) {
	gen := &grayGen{background: 0}
	point := [2]int{4, 4}

	d := newTestDetector(0.005, 1)
	d.Detect(gen.frame())
	d.Detect(gen.withPixels(50, point))
	assert.True(t, d.Detect(gen.withPixels(100, point)))
	assert.Equal(t, 1.0/(testWidth*testHeight), d.Ratio())

	// motion needs the ratio to be strictly above the sensitivity
	d = newTestDetector(0.01, 1)
	d.Detect(gen.frame())
	d.Detect(gen.withPixels(50, point))
	assert.False(t, d.Detect(gen.withPixels(100, point)))
	assert.Equal(t, 0.01, d.Ratio())
}

func TestChangeMustExceedPixelThreshold(t *testing.T) {
	gen := &grayGen{background: 0}
	points := block(2, 2, 4)

	d := newTestDetector(0.001, 1)
	d.Detect(gen.frame())
	d.Detect(gen.withPixels(7, points...))
	assert.False(t, d.Detect(gen.withPixels(14, points...)))

	d.Detect(gen.withPixels(22, points...))
	assert.True(t, d.Detect(gen.withPixels(30, points...)))
}

func TestOneChangeIsNotEnough(t *testing.T) {
	gen := &grayGen{background: 0}
	points := block(2, 2, 4)

	d := newTestDetector(0.001, 1)
	d.Detect(gen.frame())
	d.Detect(gen.frame())
	// changed since the last frame but not between the two before it
	assert.False(t, d.Detect(gen.withPixels(100, points...)))
	// a frame that stays put after a change isn't moving either
	d.Detect(gen.withPixels(100, points...))
	assert.False(t, d.Detect(gen.withPixels(100, points...)))
}

func TestErosionRemovesIsolatedPixels(t *testing.T) {
	gen := &grayGen{background: 0}
	point := [2]int{4, 4}

	d := newTestDetector(0.001, 2)
	d.Detect(gen.frame())
	d.Detect(gen.withPixels(100, point))
	assert.False(t, d.Detect(gen.frame()))
	assert.Equal(t, 0.0, d.Ratio())
}

func TestErosionShrinksBlocks(t *testing.T) {
	gen := &grayGen{background: 0}
	points := block(3, 3, 3)

	d := newTestDetector(0.001, 2)
	d.Detect(gen.frame())
	d.Detect(gen.withPixels(100, points...))
	assert.True(t, d.Detect(gen.frame()))
	assert.Equal(t, 4.0/(testWidth*testHeight), d.Ratio())

	d = newTestDetector(0.001, 3)
	d.Detect(gen.frame())
	d.Detect(gen.withPixels(100, points...))
	assert.True(t, d.Detect(gen.frame()))
	assert.Equal(t, 1.0/(testWidth*testHeight), d.Ratio())
}

func TestErosionKeepsBlocksOnTheBorder(t *testing.T) {
	gen := &grayGen{background: 0}
	points := block(0, 0, 2)

	d := newTestDetector(0.001, 2)
	d.Detect(gen.frame())
	d.Detect(gen.withPixels(100, points...))
	assert.True(t, d.Detect(gen.frame()))
	assert.Equal(t, 4.0/(testWidth*testHeight), d.Ratio())
}

func TestParamsChangesUsedOnNextFrame(t *testing.T) {
	gen := &grayGen{background: 0}
	points := block(0, 0, 3)
	conf := DefaultMotionConfig()
	conf.ErosionKernelSize = 1
	conf.Sensitivity = 0.5
	params := NewParams(conf)
	d := NewMotionDetector(params)

	d.Detect(gen.frame())
	d.Detect(gen.withPixels(100, points...))
	assert.False(t, d.Detect(gen.frame()))

	conf.Sensitivity = 0.05
	require.NoError(t, params.Set(conf))
	assert.True(t, d.Detect(gen.withPixels(100, points...)))
}

func TestParamsRejectsInvalidSettings(t *testing.T) {
	params := NewParams(DefaultMotionConfig())
	conf := DefaultMotionConfig()
	conf.ErosionKernelSize = 0
	assert.EqualError(t, params.Set(conf), "erosion-kernel-size must be at least 1")
	assert.Equal(t, DefaultMotionConfig(), params.Get())
}

func TestFrameSizeChangeRestartsWarmUp(t *testing.T) {
	gen := &grayGen{background: 0}
	d := newTestDetector(0.001, 1)
	d.Detect(gen.frame())
	d.Detect(gen.withPixels(100, block(0, 0, 5)...))

	small := frame.New(4, 4, frame.Gray)
	assert.False(t, d.Detect(small))
	assert.False(t, d.Detect(small))
}

func TestEmptyFramesHaveNoMotion(t *testing.T) {
	gen := &grayGen{background: 0}
	d := newTestDetector(0.001, 3)
	d.Detect(gen.frame())
	d.Detect(gen.withPixels(100, block(0, 0, 5)...))

	empty := frame.New(0, 0, frame.Gray)
	for i := 0; i < 4; i++ {
		assert.False(t, d.Detect(empty))
		assert.Equal(t, 0.0, d.Ratio())
	}
}

func TestColourFramesAreConvertedToGray(t *testing.T) {
	d := newTestDetector(0.001, 1)
	dark := frame.New(testWidth, testHeight, frame.BGR)
	bright := frame.New(testWidth, testHeight, frame.BGR)
	for i := range bright.Pix {
		bright.Pix[i] = 200
	}

	d.Detect(dark)
	d.Detect(bright)
	assert.True(t, d.Detect(dark))
	assert.Equal(t, 1.0, d.Ratio())
}

func TestMotionConfigValidate(t *testing.T) {
	conf := DefaultMotionConfig()
	assert.NoError(t, conf.Validate())

	conf.PixelThreshold = 256
	assert.EqualError(t, conf.Validate(), "pixel-threshold must be between 0 and 255")

	conf = DefaultMotionConfig()
	conf.Sensitivity = 1
	assert.EqualError(t, conf.Validate(), "sensitivity must be greater than 0 and less than 1")

	conf = DefaultMotionConfig()
	conf.ErosionKernelSize = 0
	assert.EqualError(t, conf.Validate(), "erosion-kernel-size must be at least 1")
}
