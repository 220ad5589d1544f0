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

// Package capture reads frames from video files, cameras, CPTV
// recordings and camera daemons.
package capture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

// ErrSourceUnavailable is wrapped by every error from Open.
var ErrSourceUnavailable = errors.New("frame source unavailable")

const socketPrefix = "unix:"

// Source says where frames come from. It is one of FilePath, DeviceID or
// SocketPath.
type Source interface {
	fmt.Stringer
	isSource()
}

// FilePath is a video or CPTV file.
type FilePath string

// DeviceID is a camera index as understood by OpenCV.
type DeviceID int

// SocketPath is a unix socket a camera daemon connects to.
type SocketPath string

func (FilePath) isSource()   {}
func (DeviceID) isSource()   {}
func (SocketPath) isSource() {}

func (p FilePath) String() string   { return string(p) }
func (d DeviceID) String() string   { return fmt.Sprintf("device %d", int(d)) }
func (p SocketPath) String() string { return socketPrefix + string(p) }

// ParseSource turns a command line value into a Source. Integers are
// camera devices and values starting with "unix:" are sockets. Anything
// else is a file.
func ParseSource(s string) Source {
	if strings.HasPrefix(s, socketPrefix) {
		return SocketPath(strings.TrimPrefix(s, socketPrefix))
	}
	if id, err := strconv.Atoi(s); err == nil && id >= 0 {
		return DeviceID(id)
	}
	return FilePath(s)
}

// FrameSource produces one frame per call to NextFrame. NextFrame
// returns io.EOF once the source has no more frames.
type FrameSource interface {
	NextFrame(f *frame.Frame) error
	FPS() float64
	Width() int
	Height() int
	Format() frame.Format
	Close() error
}

// Open starts reading frames from src. Cancelling ctx stops a socket
// source waiting for its camera or for its next frame.
func Open(ctx context.Context, src Source) (FrameSource, error) {
	var fs FrameSource
	var err error
	switch s := src.(type) {
	case FilePath:
		if strings.EqualFold(filepath.Ext(string(s)), ".cptv") {
			fs, err = openCPTV(string(s))
		} else {
			fs, err = openVideo(s)
		}
	case DeviceID:
		fs, err = openVideo(s)
	case SocketPath:
		fs, err = openSocket(ctx, string(s))
	default:
		err = fmt.Errorf("unknown source type %T", src)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src, err)
	}
	return fs, nil
}
