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
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"

	"github.com/TheCacophonyProject/go-cptv/cptvframe"
	"github.com/TheCacophonyProject/lepton3"

	"github.com/TheCacophonyProject/motion-recorder/frame"
	"github.com/TheCacophonyProject/motion-recorder/headers"
)

// FrameParser turns the raw bytes sent by a camera daemon into a frame.
type FrameParser func([]byte, *cptvframe.Frame) error

// socketSource waits for a camera daemon (leptond, bosond) to connect
// and reads the frames it sends.
type socketSource struct {
	ctx     context.Context
	conn    net.Conn
	unwatch func() bool
	reader  *bufio.Reader
	header  *headers.HeaderInfo
	parse   FrameParser
	raw     []byte
	thermal *cptvframe.Frame
	scaler  thermalScaler
	index   int
}

func openSocket(ctx context.Context, path string) (*socketSource, error) {
	os.Remove(path)
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	log.Print("waiting for camera connection")
	unwatch := context.AfterFunc(ctx, func() { listener.Close() })
	conn, err := listener.Accept()
	unwatch()
	// Prevent concurrent connections.
	listener.Close()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	ss, err := newSocketSource(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	log.Printf("connection from %s", ss.header)
	return ss, nil
}

// newSocketSource reads the camera header from conn. The connection is
// closed when ctx is cancelled so blocked reads return.
func newSocketSource(ctx context.Context, conn net.Conn) (*socketSource, error) {
	unwatch := context.AfterFunc(ctx, func() { conn.Close() })
	reader := bufio.NewReader(conn)
	header, err := headers.ReadHeaderInfo(reader)
	if err != nil {
		unwatch()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	parse, err := parserFor(header.Model())
	if err != nil {
		unwatch()
		return nil, err
	}
	return &socketSource{
		ctx:     ctx,
		conn:    conn,
		unwatch: unwatch,
		reader:  reader,
		header:  header,
		parse:   parse,
		raw:     make([]byte, header.FrameSize()),
		thermal: cptvframe.NewFrame(header),
	}, nil
}

func parserFor(model string) (FrameParser, error) {
	switch strings.ToLower(model) {
	case "", "lepton3", "lepton3.5":
		return lepton3.ParseRawFrame, nil
	case "boson":
		return convertRawBosonFrame, nil
	}
	return nil, fmt.Errorf("unsupported camera model %q", model)
}

func (ss *socketSource) NextFrame(f *frame.Frame) error {
	if _, err := io.ReadFull(ss.reader, ss.raw); err != nil {
		if ss.ctx.Err() != nil {
			return ss.ctx.Err()
		}
		if err == io.ErrUnexpectedEOF {
			return io.EOF
		}
		return err
	}
	if err := ss.parse(ss.raw, ss.thermal); err != nil {
		return err
	}
	ss.scaler.toGray(ss.thermal, f, ss.index)
	ss.index++
	return nil
}

func (ss *socketSource) FPS() float64         { return float64(ss.header.FPS()) }
func (ss *socketSource) Width() int           { return ss.header.ResX() }
func (ss *socketSource) Height() int          { return ss.header.ResY() }
func (ss *socketSource) Format() frame.Format { return frame.Gray }

func (ss *socketSource) Close() error {
	ss.unwatch()
	return ss.conn.Close()
}

// convertRawBosonFrame reads little endian 16 bit pixels. Boson cameras
// don't send telemetry.
func convertRawBosonFrame(raw []byte, out *cptvframe.Frame) error {
	if len(raw) < len(out.Pix)*len(out.Pix[0])*2 {
		return fmt.Errorf("boson frame is only %d bytes", len(raw))
	}
	i := 0
	for y, row := range out.Pix {
		for x := range row {
			out.Pix[y][x] = binary.LittleEndian.Uint16(raw[i : i+2])
			i += 2
		}
	}
	return nil
}
