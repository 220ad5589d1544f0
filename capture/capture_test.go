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
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/TheCacophonyProject/go-cptv/cptvframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

func TestParseSource(t *testing.T) {
	assert.Equal(t, DeviceID(0), ParseSource("0"))
	assert.Equal(t, DeviceID(2), ParseSource("2"))
	assert.Equal(t, FilePath("-1"), ParseSource("-1"))
	assert.Equal(t, FilePath("/videos/garden.mp4"), ParseSource("/videos/garden.mp4"))
	assert.Equal(t, SocketPath("/var/run/lepton-frames"), ParseSource("unix:/var/run/lepton-frames"))
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "device 1", DeviceID(1).String())
	assert.Equal(t, "unix:/tmp/sock", SocketPath("/tmp/sock").String())
	assert.Equal(t, "a.mp4", FilePath("a.mp4").String())
}

func TestOpenMissingFileIsUnavailable(t *testing.T) {
	_, err := Open(context.Background(), FilePath("/does/not/exist.cptv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}

func TestThermalScalerFixedFromFirstFrame(t *testing.T) {
	camera := &cameraSpec{resX: 2, resY: 2, fps: 9}
	in := cptvframe.NewFrame(camera)
	in.Pix[0][0] = 3000
	in.Pix[0][1] = 3100
	in.Pix[1][0] = 3050
	in.Pix[1][1] = 3000

	var scaler thermalScaler
	out := new(frame.Frame)
	scaler.toGray(in, out, 4)
	assert.Equal(t, 4, out.Index)
	assert.Equal(t, frame.Gray, out.Format)
	assert.Equal(t, []byte{0, 255, 127, 0}, out.Pix)

	// later frames use the same range
	in.Pix[0][0] = 2900
	in.Pix[0][1] = 3300
	scaler.toGray(in, out, 5)
	assert.Equal(t, []byte{0, 255, 127, 0}, out.Pix)
}

func TestParserFor(t *testing.T) {
	_, err := parserFor("lepton3")
	assert.NoError(t, err)
	_, err = parserFor("Boson")
	assert.NoError(t, err)
	_, err = parserFor("webcam")
	assert.EqualError(t, err, `unsupported camera model "webcam"`)
}

func TestSocketSourceReadsBosonFrames(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	go func() {
		defer server.Close()
		fmt.Fprint(server, "ResX: 2\nResY: 2\nFPS: 9\nFrameSize: 8\nModel: boson\n\n")
		raw := make([]byte, 8)
		for i, v := range []uint16{100, 200, 100, 100} {
			binary.LittleEndian.PutUint16(raw[i*2:], v)
		}
		server.Write(raw)
		server.Write(raw)
	}()

	ss, err := newSocketSource(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, 9.0, ss.FPS())
	assert.Equal(t, 2, ss.Width())
	assert.Equal(t, 2, ss.Height())

	f := new(frame.Frame)
	require.NoError(t, ss.NextFrame(f))
	assert.Equal(t, 0, f.Index)
	assert.Equal(t, []byte{0, 255, 0, 0}, f.Pix)

	require.NoError(t, ss.NextFrame(f))
	assert.Equal(t, 1, f.Index)

	assert.Equal(t, io.EOF, ss.NextFrame(f))
}

func TestCancelUnblocksSocketRead(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	go fmt.Fprint(server, "ResX: 2\nResY: 2\nFPS: 9\nFrameSize: 8\nModel: boson\n\n")

	ctx, cancel := context.WithCancel(context.Background())
	ss, err := newSocketSource(ctx, client)
	require.NoError(t, err)
	defer ss.Close()

	// the camera has gone quiet so NextFrame blocks
	done := make(chan error, 1)
	go func() {
		done <- ss.NextFrame(new(frame.Frame))
	}()
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(5 * time.Second):
		t.Fatal("NextFrame still blocked after cancel")
	}
}

func TestCancelWhileReadingHeader(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := newSocketSource(ctx, client)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(5 * time.Second):
		t.Fatal("header read still blocked after cancel")
	}
}

func TestCancelWhileWaitingForCamera(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Open(ctx, SocketPath(path))
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrSourceUnavailable))
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Open still waiting after cancel")
	}
}
