// motion-recorder - record video segments around detected motion
//  Copyright (C) 2020, The Cacophony Project
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

package headers

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v1"
)

// Header keys sent by camera daemons.
const (
	XResolution = "ResX"
	YResolution = "ResY"
	FPS         = "FPS"
	FrameSize   = "FrameSize"
	Brand       = "Brand"
	Model       = "Model"
)

// HeaderInfo contains the camera description fields sent by a camera
// daemon before its first frame.
type HeaderInfo struct {
	resX      int
	resY      int
	fps       int
	framesize int
	brand     string
	model     string
}

// ResX implements cptvframe.CameraSpec.
func (h *HeaderInfo) ResX() int {
	return h.resX
}

// ResY implements cptvframe.CameraSpec.
func (h *HeaderInfo) ResY() int {
	return h.resY
}

// FPS implements cptvframe.CameraSpec.
func (h *HeaderInfo) FPS() int {
	return h.fps
}

// FrameSize returns the number of bytes in each frame (include any
// telemetry bytes).
func (h *HeaderInfo) FrameSize() int {
	return h.framesize
}

func (h *HeaderInfo) Model() string {
	return h.model
}

func (h *HeaderInfo) Brand() string {
	return h.brand
}

func (h *HeaderInfo) String() string {
	return fmt.Sprintf("%s %s (%dx%d@%dfps)", h.brand, h.model, h.resX, h.resY, h.fps)
}

// ReadHeaderInfo reads YAML header lines up to the first blank line.
func ReadHeaderInfo(reader *bufio.Reader) (*HeaderInfo, error) {
	var buf bytes.Buffer
	for {
		line, err := reader.ReadString(byte('\n'))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		buf.WriteString(line)
	}
	h := make(map[string]interface{})
	err := yaml.Unmarshal(buf.Bytes(), &h)
	if err != nil {
		return nil, err
	}

	info := &HeaderInfo{
		resX:      toInt(h[XResolution]),
		resY:      toInt(h[YResolution]),
		fps:       toInt(h[FPS]),
		framesize: toInt(h[FrameSize]),
		brand:     toStr(h[Brand]),
		model:     toStr(h[Model]),
	}
	if err := info.validate(); err != nil {
		return nil, err
	}
	return info, nil
}

func (h *HeaderInfo) validate() error {
	if h.resX <= 0 || h.resY <= 0 {
		return errors.New("header is missing the frame resolution")
	}
	if h.fps <= 0 {
		return errors.New("header is missing the frame rate")
	}
	if h.framesize < h.resX*h.resY*2 {
		return fmt.Errorf("frame size %d is too small for %dx%d frames", h.framesize, h.resX, h.resY)
	}
	return nil
}

func toInt(v interface{}) int {
	out, ok := v.(int)
	if !ok {
		return 0
	}
	return out
}

func toStr(v interface{}) string {
	out, ok := v.(string)
	if !ok {
		return ""
	}
	return out
}
