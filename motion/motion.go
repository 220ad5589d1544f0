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
	"log"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

func NewMotionDetector(params *Params) *Detector {
	return &Detector{params: params}
}

// Detector decides whether a frame shows motion by comparing it with the
// two frames before it. A pixel is moving when it changed between both
// pairs of frames; isolated moving pixels are then eroded away and the
// frame has motion when enough of it is still moving.
type Detector struct {
	params *Params

	width, height int
	// gray holds the current, previous and second previous frames.
	gray    [3][]byte
	current int
	count   int

	mask  []byte
	work  []byte
	ratio float64
}

// Detect classifies f and then remembers it for the following frames.
// The first two frames never show motion.
func (d *Detector) Detect(f *frame.Frame) bool {
	conf := d.params.Get()

	if f.Width != d.width || f.Height != d.height {
		d.resize(f.Width, f.Height)
	}

	cur := d.gray[d.current]
	frame.ToGray(cur, f)
	defer d.shift()

	if d.count < 2 || len(d.mask) == 0 {
		d.ratio = 0
		return false
	}

	prev := d.gray[(d.current+2)%3]
	prev2 := d.gray[(d.current+1)%3]
	thresh := conf.PixelThreshold
	for i := range d.mask {
		if absDiff(cur[i], prev[i]) > thresh && absDiff(prev[i], prev2[i]) > thresh {
			d.mask[i] = 1
		} else {
			d.mask[i] = 0
		}
	}

	erode(d.mask, d.work, d.width, d.height, conf.ErosionKernelSize)

	changed := countNonZero(d.mask)
	d.ratio = float64(changed) / float64(len(d.mask))
	if changed > 0 && conf.Verbose {
		log.Printf("changed pixels %d (%.4f)", changed, d.ratio)
	}
	return d.ratio > conf.Sensitivity
}

// Ratio returns the fraction of moving pixels found by the last call to
// Detect.
func (d *Detector) Ratio() float64 {
	return d.ratio
}

func (d *Detector) shift() {
	d.current = (d.current + 1) % 3
	if d.count < 2 {
		d.count++
	}
}

func (d *Detector) resize(width, height int) {
	if d.width != 0 {
		log.Printf("frame size changed from %dx%d to %dx%d", d.width, d.height, width, height)
	}
	d.width = width
	d.height = height
	n := width * height
	for i := range d.gray {
		d.gray[i] = make([]byte, n)
	}
	d.mask = make([]byte, n)
	d.work = make([]byte, n)
	d.current = 0
	d.count = 0
}

// erode applies a size x size rectangular erosion to a 0/1 mask. The
// anchor is at size/2 and pixels outside the image never erode, matching
// OpenCV's defaults. work must be the same length as mask.
func erode(mask, work []byte, width, height, size int) {
	if size <= 1 {
		return
	}
	lo := -(size / 2)
	hi := size - 1 + lo

	// The kernel is separable: erode rows into work, then columns back
	// into mask.
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			work[row+x] = minOver(mask, row, x+lo, x+hi, width, 1)
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			mask[y*width+x] = minOver(work, x, y+lo, y+hi, height, width)
		}
	}
}

// minOver returns the minimum of buf[base+i*step] for i in [from, to]
// clipped to [0, limit).
func minOver(buf []byte, base, from, to, limit, step int) byte {
	if from < 0 {
		from = 0
	}
	if to >= limit {
		to = limit - 1
	}
	for i := from; i <= to; i++ {
		if buf[base+i*step] == 0 {
			return 0
		}
	}
	return 1
}

func countNonZero(mask []byte) int {
	n := 0
	for _, v := range mask {
		if v != 0 {
			n++
		}
	}
	return n
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
