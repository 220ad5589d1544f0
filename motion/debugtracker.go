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

import "fmt"

// ratioTracker keeps the range of motion ratios seen while a segment is
// open, for verbose logging.
type ratioTracker struct {
	min, max, total float64
	count           int
}

func (t *ratioTracker) update(ratio float64) {
	if t.count == 0 || ratio < t.min {
		t.min = ratio
	}
	if t.count == 0 || ratio > t.max {
		t.max = ratio
	}
	t.total += ratio
	t.count++
}

func (t *ratioTracker) reset() {
	*t = ratioTracker{}
}

func (t *ratioTracker) String() string {
	if t.count == 0 {
		return "no frames"
	}
	return fmt.Sprintf("min %.4f max %.4f avg %.4f over %d frames",
		t.min, t.max, t.total/float64(t.count), t.count)
}
