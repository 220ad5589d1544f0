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
	"errors"
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

// videoSource reads frames through OpenCV.
type videoSource struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
	bgr     gocv.Mat
	fps     float64
	width   int
	height  int
	index   int
}

func openVideo(src Source) (*videoSource, error) {
	var capture *gocv.VideoCapture
	var err error
	switch s := src.(type) {
	case FilePath:
		capture, err = gocv.VideoCaptureFile(string(s))
	case DeviceID:
		capture, err = gocv.VideoCaptureDevice(int(s))
	default:
		return nil, fmt.Errorf("%s isn't a video source", src)
	}
	if err != nil {
		return nil, err
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.New("unable to open video")
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		capture.Close()
		return nil, errors.New("unable to get video frame rate")
	}

	return &videoSource{
		capture: capture,
		mat:     gocv.NewMat(),
		bgr:     gocv.NewMat(),
		fps:     fps,
		width:   int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:  int(capture.Get(gocv.VideoCaptureFrameHeight)),
	}, nil
}

func (vs *videoSource) NextFrame(f *frame.Frame) error {
	if !vs.capture.Read(&vs.mat) || vs.mat.Empty() {
		return io.EOF
	}

	mat := vs.mat
	format := frame.BGR
	switch vs.mat.Channels() {
	case 1:
		format = frame.Gray
	case 3:
	case 4:
		gocv.CvtColor(vs.mat, &vs.bgr, gocv.ColorBGRAToBGR)
		mat = vs.bgr
	default:
		return fmt.Errorf("unsupported frame with %d channels", vs.mat.Channels())
	}

	f.Index = vs.index
	f.Width = mat.Cols()
	f.Height = mat.Rows()
	f.Format = format
	data := mat.ToBytes()
	if cap(f.Pix) < len(data) {
		f.Pix = make([]byte, len(data))
	}
	f.Pix = f.Pix[:len(data)]
	copy(f.Pix, data)
	vs.index++
	return nil
}

func (vs *videoSource) FPS() float64 { return vs.fps }
func (vs *videoSource) Width() int   { return vs.width }
func (vs *videoSource) Height() int  { return vs.height }

// Format is BGR; OpenCV converts camera and file frames to BGR unless
// told otherwise.
func (vs *videoSource) Format() frame.Format { return frame.BGR }

func (vs *videoSource) Close() error {
	vs.mat.Close()
	vs.bgr.Close()
	return vs.capture.Close()
}
