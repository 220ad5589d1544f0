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

package main

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path"
	"sync"
	"time"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

const (
	snapshotName          = "still.png"
	allowedSnapshotPeriod = 500 * time.Millisecond
)

// snapshotter holds a copy of the newest frame so the D-Bus service can
// save it from another goroutine.
type snapshotter struct {
	dir string

	mu            sync.Mutex
	latest        *frame.Frame
	previousIndex int
	previousTime  time.Time
}

func newSnapshotter(dir string) *snapshotter {
	return &snapshotter{
		dir:           dir,
		previousIndex: -1,
	}
}

func (s *snapshotter) update(f *frame.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		s.latest = f.Clone()
		return
	}
	s.latest.CopyFrom(f)
}

// save writes the newest frame to still.png in the output directory.
func (s *snapshotter) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.previousTime) < allowedSnapshotPeriod {
		return nil
	}
	if s.latest == nil {
		return errors.New("no frames yet")
	}
	// Check if frame had already been saved
	if s.latest.Index == s.previousIndex {
		return nil
	}

	out, err := os.Create(path.Join(s.dir, snapshotName))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := png.Encode(out, toImage(s.latest)); err != nil {
		return err
	}

	// the time will be changed only if the attempt is successful
	s.previousIndex = s.latest.Index
	s.previousTime = time.Now()
	return nil
}

func toImage(f *frame.Frame) image.Image {
	rect := image.Rect(0, 0, f.Width, f.Height)
	if f.Format == frame.Gray {
		img := image.NewGray(rect)
		copy(img.Pix, f.Pix)
		return img
	}
	img := image.NewRGBA(rect)
	stride := f.Stride()
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := y*stride + x*3
			img.SetRGBA(x, y, color.RGBA{R: f.Pix[i+2], G: f.Pix[i+1], B: f.Pix[i], A: 0xff})
		}
	}
	return img
}

func deleteSnapshot(dir string) {
	if err := os.Remove(path.Join(dir, snapshotName)); err != nil && !os.IsNotExist(err) {
		log.Printf("error deleting snapshot image: %v", err)
	}
}
