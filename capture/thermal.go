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

package capture

import (
	"math"

	"github.com/TheCacophonyProject/go-cptv/cptvframe"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

// thermalScaler maps 16 bit thermal readings onto 8 bit gray. The range
// is taken from the first frame and then fixed so the same temperature
// always gives the same gray level.
type thermalScaler struct {
	base uint16
	span uint32
}

func (ts *thermalScaler) toGray(in *cptvframe.Frame, out *frame.Frame, index int) {
	if ts.span == 0 {
		ts.calibrate(in)
	}

	height := len(in.Pix)
	width := 0
	if height > 0 {
		width = len(in.Pix[0])
	}
	out.Index = index
	out.Width = width
	out.Height = height
	out.Format = frame.Gray
	if cap(out.Pix) < width*height {
		out.Pix = make([]byte, width*height)
	}
	out.Pix = out.Pix[:width*height]

	for y, row := range in.Pix {
		for x, v := range row {
			var g uint32
			if v > ts.base {
				g = uint32(v-ts.base) * 255 / ts.span
			}
			if g > 255 {
				g = 255
			}
			out.Pix[y*width+x] = uint8(g)
		}
	}
}

func (ts *thermalScaler) calibrate(in *cptvframe.Frame) {
	var lo uint16 = math.MaxUint16
	var hi uint16
	for _, row := range in.Pix {
		for _, v := range row {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	ts.base = lo
	ts.span = 1
	if hi > lo {
		ts.span = uint32(hi - lo)
	}
}

// cameraSpec implements cptvframe.CameraSpec.
type cameraSpec struct {
	resX, resY, fps int
}

func (c *cameraSpec) ResX() int { return c.resX }
func (c *cameraSpec) ResY() int { return c.resY }
func (c *cameraSpec) FPS() int  { return c.fps }
