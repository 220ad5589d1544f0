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

package recorder

import (
	"fmt"
	"path/filepath"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

// Recorder writes segments. At most one segment is open at a time: frames
// given to WriteFrame between StartRecording and StopRecording end up in
// the same segment, in order.
type Recorder interface {
	CheckCanRecord() error
	// StartRecording opens a segment for motion first seen on the frame
	// with the given capture index.
	StartRecording(index int) error
	WriteFrame(*frame.Frame) error
	StopRecording() error
}

// NoWriteRecorder accepts and discards everything.
type NoWriteRecorder struct {
}

func (*NoWriteRecorder) CheckCanRecord() error         { return nil }
func (*NoWriteRecorder) StartRecording(int) error      { return nil }
func (*NoWriteRecorder) WriteFrame(*frame.Frame) error { return nil }
func (*NoWriteRecorder) StopRecording() error          { return nil }

// SegmentName returns the file a segment starting at capture index is
// written to.
func SegmentName(dir string, index int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("OUT_Frame=%d.%s", index, ext))
}
