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
	"bufio"
	"fmt"
	"log"
	"os"
	"time"

	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/cptvframe"

	"github.com/TheCacophonyProject/motion-recorder/frame"
	"github.com/TheCacophonyProject/motion-recorder/recorder"
)

const CPTVExt = "cptv"

// CPTVHeader holds the details written at the start of every CPTV
// segment.
type CPTVHeader struct {
	DeviceName   string
	PreRollSecs  float64
	MotionConfig string
}

// cameraSpec describes segment frames to go-cptv.
type cameraSpec struct {
	resX, resY, fps int
}

func (c *cameraSpec) ResX() int { return c.resX }
func (c *cameraSpec) ResY() int { return c.resY }
func (c *cameraSpec) FPS() int  { return c.fps }

func NewCPTVFileRecorder(outputDir string, minDiskSpace uint64, spec Spec, header CPTVHeader) *CPTVFileRecorder {
	camera := &cameraSpec{
		resX: spec.Width,
		resY: spec.Height,
		fps:  int(spec.FPS + 0.5),
	}
	return &CPTVFileRecorder{
		outputDir:    outputDir,
		minDiskSpace: minDiskSpace,
		spec:         spec,
		camera:       camera,
		frame:        cptvframe.NewFrame(camera),
		gray:         make([]byte, spec.Width*spec.Height),
		header: cptv.Header{
			DeviceName:   header.DeviceName,
			PreviewSecs:  int(header.PreRollSecs),
			MotionConfig: header.MotionConfig,
			FPS:          camera.fps,
		},
	}
}

// CPTVFileRecorder writes each segment as a grayscale CPTV file. Files
// are written under a temporary name and renamed once complete.
type CPTVFileRecorder struct {
	outputDir    string
	minDiskSpace uint64
	spec         Spec
	camera       *cameraSpec
	header       cptv.Header
	writer       *cptvFile
	frame        *cptvframe.Frame
	gray         []byte
	firstIndex   int
	failed       bool
}

// cptvFile is a CPTV stream written to a file. Unlike cptv.FileWriter it
// reports errors from finishing the file.
type cptvFile struct {
	*cptv.Writer
	bw *bufio.Writer
	f  *os.File
}

func createCPTVFile(filename string, c cptvframe.CameraSpec) (*cptvFile, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(f)
	return &cptvFile{
		Writer: cptv.NewWriter(bw, c),
		bw:     bw,
		f:      f,
	}, nil
}

func (cf *cptvFile) Name() string {
	return cf.f.Name()
}

// Close finishes the stream and closes the file, returning the first
// error.
func (cf *cptvFile) Close() error {
	err := cf.Writer.Close()
	if flushErr := cf.bw.Flush(); err == nil {
		err = flushErr
	}
	if closeErr := cf.f.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (cr *CPTVFileRecorder) CheckCanRecord() error {
	return checkCanRecord(cr.minDiskSpace, cr.outputDir)
}

func (cr *CPTVFileRecorder) StartRecording(index int) error {
	if cr.writer != nil {
		return fmt.Errorf("segment %s is still open", cr.writer.Name())
	}
	filename := recorder.SegmentName(cr.outputDir, index, CPTVExt+"."+tempExt)
	log.Printf("recording started: %s", filename)

	writer, err := createCPTVFile(filename, cr.camera)
	if err != nil {
		return err
	}

	if err = writer.WriteHeader(cr.header); err != nil {
		writer.Close()
		os.Remove(filename)
		return err
	}

	cr.writer = writer
	cr.firstIndex = -1
	cr.failed = false
	return nil
}

func (cr *CPTVFileRecorder) WriteFrame(f *frame.Frame) error {
	if cr.writer == nil {
		return fmt.Errorf("no segment open for frame %d", f.Index)
	}
	if err := cr.spec.check(f); err != nil {
		cr.failed = true
		return err
	}
	if cr.firstIndex < 0 {
		cr.firstIndex = f.Index
	}

	frame.ToGray(cr.gray, f)
	for y, row := range cr.frame.Pix {
		for x := range row {
			row[x] = uint16(cr.gray[y*f.Width+x])
		}
	}
	cr.frame.Status.TimeOn = cr.frameTime(f.Index)
	if err := cr.writer.WriteFrame(cr.frame); err != nil {
		cr.failed = true
		return err
	}
	return nil
}

// frameTime is the time of the frame from the start of the segment.
func (cr *CPTVFileRecorder) frameTime(index int) time.Duration {
	return time.Duration(float64(index-cr.firstIndex) / cr.spec.FPS * float64(time.Second))
}

// StopRecording finishes the open segment and gives it its final name.
// A segment that failed to write or to close is incomplete, so its temp
// file is removed instead.
func (cr *CPTVFileRecorder) StopRecording() error {
	if cr.writer == nil {
		return nil
	}
	name := cr.writer.Name()
	err := cr.writer.Close()
	cr.writer = nil

	if cr.failed || err != nil {
		log.Printf("recording abandoned: %s", name)
		os.Remove(name)
		return err
	}

	finalName, err := renameTempRecording(name)
	log.Printf("recording stopped: %s", finalName)
	return err
}

// Stop abandons any open segment.
func (cr *CPTVFileRecorder) Stop() {
	if cr.writer != nil {
		cr.writer.Close()
		os.Remove(cr.writer.Name())
		cr.writer = nil
	}
}
