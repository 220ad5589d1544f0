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
	"io/ioutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHeaderInfo(t *testing.T) {
	input := "ResX: 160\nResY: 120\nFPS: 9\nFrameSize: 39040\nBrand: flir\nModel: lepton3\n\nframe data"
	reader := bufio.NewReader(strings.NewReader(input))

	h, err := ReadHeaderInfo(reader)
	require.NoError(t, err)
	assert.Equal(t, 160, h.ResX())
	assert.Equal(t, 120, h.ResY())
	assert.Equal(t, 9, h.FPS())
	assert.Equal(t, 39040, h.FrameSize())
	assert.Equal(t, "flir", h.Brand())
	assert.Equal(t, "lepton3", h.Model())
	assert.Equal(t, "flir lepton3 (160x120@9fps)", h.String())

	// the reader is left at the first frame
	rest, err := ioutil.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "frame data", string(rest))
}

func TestReadHeaderInfoMissingFrameRate(t *testing.T) {
	input := "ResX: 160\nResY: 120\nFrameSize: 39040\n\n"
	_, err := ReadHeaderInfo(bufio.NewReader(strings.NewReader(input)))
	assert.EqualError(t, err, "header is missing the frame rate")
}

func TestReadHeaderInfoFrameSizeTooSmall(t *testing.T) {
	input := "ResX: 160\nResY: 120\nFPS: 9\nFrameSize: 100\n\n"
	_, err := ReadHeaderInfo(bufio.NewReader(strings.NewReader(input)))
	assert.EqualError(t, err, "frame size 100 is too small for 160x120 frames")
}

func TestReadHeaderInfoTruncated(t *testing.T) {
	_, err := ReadHeaderInfo(bufio.NewReader(strings.NewReader("ResX: 160\n")))
	assert.Error(t, err)
}
