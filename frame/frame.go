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

// Package frame holds the image type passed between capture, motion
// detection and the segment writers.
package frame

import "fmt"

// Format describes the pixel layout of Frame.Pix.
type Format int

const (
	// BGR is 8-bit, 3 channel, interleaved blue/green/red.
	BGR Format = iota
	// Gray is 8-bit single channel.
	Gray
)

func (f Format) String() string {
	switch f {
	case BGR:
		return "bgr24"
	case Gray:
		return "gray8"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Channels returns the number of bytes per pixel.
func (f Format) Channels() int {
	if f == Gray {
		return 1
	}
	return 3
}

// Frame is a single captured image. Index is the capture tick the frame
// was read on.
type Frame struct {
	Index  int
	Width  int
	Height int
	Format Format
	Pix    []byte
}

// New allocates a zeroed frame.
func New(width, height int, format Format) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Format: format,
		Pix:    make([]byte, width*height*format.Channels()),
	}
}

// Stride is the number of bytes in one row.
func (f *Frame) Stride() int {
	return f.Width * f.Format.Channels()
}

// SameShape reports whether the two frames have identical geometry and
// pixel format.
func (f *Frame) SameShape(other *Frame) bool {
	return f.Width == other.Width && f.Height == other.Height && f.Format == other.Format
}

// CopyFrom copies src into f, reusing f's pixel storage when it is big
// enough.
func (f *Frame) CopyFrom(src *Frame) {
	f.Index = src.Index
	f.Width = src.Width
	f.Height = src.Height
	f.Format = src.Format
	if cap(f.Pix) < len(src.Pix) {
		f.Pix = make([]byte, len(src.Pix))
	}
	f.Pix = f.Pix[:len(src.Pix)]
	copy(f.Pix, src.Pix)
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := new(Frame)
	out.CopyFrom(f)
	return out
}

// ToGray writes the luma of src into dst, which must hold at least
// Width*Height bytes. The weights are the fixed point BT.601 ones OpenCV
// uses for BGR to gray conversion so results match frames converted with
// gocv.
func ToGray(dst []byte, src *Frame) {
	n := src.Width * src.Height
	if src.Format == Gray {
		copy(dst[:n], src.Pix[:n])
		return
	}
	pix := src.Pix
	for i, j := 0, 0; i < n; i, j = i+1, j+3 {
		b := uint32(pix[j])
		g := uint32(pix[j+1])
		r := uint32(pix[j+2])
		dst[i] = uint8((r*4899 + g*9617 + b*1868 + 8192) >> 14)
	}
}
