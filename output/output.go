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

// Package output has the recorders that write segments to disk.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"syscall"

	"github.com/TheCacophonyProject/motion-recorder/frame"
)

const tempExt = "temp"

// Spec describes the frames a recorder will be given.
type Spec struct {
	Width  int
	Height int
	FPS    float64
	Format frame.Format
}

func (s Spec) check(f *frame.Frame) error {
	if f.Width != s.Width || f.Height != s.Height || f.Format != s.Format {
		return fmt.Errorf("frame is %dx%d %s but segment is %dx%d %s",
			f.Width, f.Height, f.Format, s.Width, s.Height, s.Format)
	}
	return nil
}

func checkCanRecord(minDiskSpace uint64, dir string) error {
	enoughSpace, err := checkDiskSpace(minDiskSpace, dir)
	if err != nil {
		return fmt.Errorf("problem with checking disk space: %v", err)
	} else if !enoughSpace {
		return errors.New("motion detected but not enough free disk space to start recording")
	}
	return nil
}

func checkDiskSpace(mb uint64, dir string) (bool, error) {
	var fs syscall.Statfs_t
	if err := syscall.Statfs(dir, &fs); err != nil {
		return false, err
	}
	return fs.Bavail*uint64(fs.Bsize)/1024/1024 >= mb, nil
}

func renameTempRecording(tempName string) (string, error) {
	finalName := recordingFinalName(tempName)
	err := os.Rename(tempName, finalName)
	if err != nil {
		return "", err
	}
	return finalName, nil
}

var reTempName = regexp.MustCompile(`(.+)\.` + tempExt + `$`)

func recordingFinalName(filename string) string {
	return reTempName.ReplaceAllString(filename, `$1`)
}

// DeleteTempFiles removes segments left unfinished by an earlier run.
func DeleteTempFiles(directory string) error {
	matches, _ := filepath.Glob(filepath.Join(directory, "*."+tempExt))
	for _, filename := range matches {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}
	return nil
}
