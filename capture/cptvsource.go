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
	"os"

	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/cptvframe"
	"github.com/TheCacophonyProject/lepton3"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

// cptvSource plays back a CPTV recording.
type cptvSource struct {
	file    *os.File
	reader  *cptv.Reader
	camera  *cameraSpec
	thermal *cptvframe.Frame
	scaler  thermalScaler
	index   int
}

func openCPTV(filename string) (*cptvSource, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	reader, err := cptv.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	camera := &cameraSpec{
		resX: reader.ResX(),
		resY: reader.ResY(),
		fps:  reader.FPS(),
	}
	// Older recordings don't record a frame rate; they all came from
	// Lepton 3 cameras.
	if camera.fps <= 0 {
		camera.fps = lepton3.FramesHz
	}

	return &cptvSource{
		file:    file,
		reader:  reader,
		camera:  camera,
		thermal: cptvframe.NewFrame(camera),
	}, nil
}

func (cs *cptvSource) NextFrame(f *frame.Frame) error {
	if err := cs.reader.ReadFrame(cs.thermal); err != nil {
		return err
	}
	cs.scaler.toGray(cs.thermal, f, cs.index)
	cs.index++
	return nil
}

func (cs *cptvSource) FPS() float64         { return float64(cs.camera.fps) }
func (cs *cptvSource) Width() int           { return cs.camera.resX }
func (cs *cptvSource) Height() int          { return cs.camera.resY }
func (cs *cptvSource) Format() frame.Format { return frame.Gray }

func (cs *cptvSource) Close() error {
	return cs.file.Close()
}
