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

package output

import (
	"fmt"
	"log"

	"gocv.io/x/gocv"

	"github.com/TheCacophonyProject/motion-recorder/frame"
	"github.com/TheCacophonyProject/motion-recorder/recorder"
)

const (
	DefaultCodec = "avc1"
	VideoExt     = "mp4"
)

func NewVideoFileRecorder(outputDir, codec string, minDiskSpace uint64, spec Spec) *VideoFileRecorder {
	if codec == "" {
		codec = DefaultCodec
	}
	return &VideoFileRecorder{
		outputDir:    outputDir,
		codec:        codec,
		minDiskSpace: minDiskSpace,
		spec:         spec,
	}
}

// VideoFileRecorder encodes each segment to its own video file through
// OpenCV.
type VideoFileRecorder struct {
	outputDir    string
	codec        string
	minDiskSpace uint64
	spec         Spec
	writer       *gocv.VideoWriter
	name         string
	frames       int
}

func (vr *VideoFileRecorder) CheckCanRecord() error {
	return checkCanRecord(vr.minDiskSpace, vr.outputDir)
}

func (vr *VideoFileRecorder) StartRecording(index int) error {
	if vr.writer != nil {
		return fmt.Errorf("segment %s is still open", vr.name)
	}
	filename := recorder.SegmentName(vr.outputDir, index, VideoExt)

	writer, err := gocv.VideoWriterFile(
		filename,
		vr.codec,
		vr.spec.FPS,
		vr.spec.Width,
		vr.spec.Height,
		vr.spec.Format != frame.Gray)
	if err != nil {
		return err
	}
	if !writer.IsOpened() {
		writer.Close()
		return fmt.Errorf("could not open %s with codec %s", filename, vr.codec)
	}

	log.Printf("recording started: %s", filename)
	vr.writer = writer
	vr.name = filename
	vr.frames = 0
	return nil
}

func (vr *VideoFileRecorder) WriteFrame(f *frame.Frame) error {
	if vr.writer == nil {
		return fmt.Errorf("no segment open for frame %d", f.Index)
	}
	if err := vr.spec.check(f); err != nil {
		return err
	}

	matType := gocv.MatTypeCV8UC3
	if f.Format == frame.Gray {
		matType = gocv.MatTypeCV8UC1
	}
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, matType, f.Pix)
	if err != nil {
		return err
	}
	defer mat.Close()

	if err := vr.writer.Write(mat); err != nil {
		return err
	}
	vr.frames++
	return nil
}

func (vr *VideoFileRecorder) StopRecording() error {
	if vr.writer == nil {
		return nil
	}
	err := vr.writer.Close()
	log.Printf("recording stopped: %s (%d frames)", vr.name, vr.frames)
	vr.writer = nil
	vr.name = ""
	return err
}
