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
	"fmt"
	"io"
	"log"

	"github.com/TheCacophonyProject/motion-recorder/capture"
	"github.com/TheCacophonyProject/motion-recorder/frame"
	"github.com/TheCacophonyProject/motion-recorder/motion"
	"github.com/TheCacophonyProject/motion-recorder/recorder"
)

// EventLoggingRecordingListener remembers which frames would have been
// recorded.
type EventLoggingRecordingListener struct {
	verbose             bool
	frameCount          int
	motionDetectedCount int
	segments            int
	recordedFrames      string
}

func (p *EventLoggingRecordingListener) MotionDetected() {
	if p.verbose {
		log.Printf("%d: Motion Detected", p.frameCount)
	}
	p.motionDetectedCount++
}

func (p *EventLoggingRecordingListener) RecordingStarted(index int) {
	if p.verbose {
		log.Printf("%d: Recording Started", p.frameCount)
	}
	p.segments++
	p.recordedFrames += fmt.Sprintf("(%d:", index)
}

func (p *EventLoggingRecordingListener) RecordingEnded() {
	if p.verbose {
		log.Printf("%d: Recording Ended", p.frameCount)
	}
	p.recordedFrames += fmt.Sprintf("%d)", p.frameCount)
}

func (p *EventLoggingRecordingListener) RecordingFailed(err error) {
	log.Printf("%d: Recording Failed: %v", p.frameCount, err)
}

func (p *EventLoggingRecordingListener) completed() {
	if p.recordedFrames == "" {
		p.recordedFrames = "None"
	}
}

func (p *EventLoggingRecordingListener) String() string {
	return fmt.Sprintf("Recorded: %-16s Segments: %d Motion frames: %d/%d",
		p.recordedFrames, p.segments, p.motionDetectedCount, p.frameCount)
}

// runPlayback runs every frame of src through the motion detector without
// writing anything.
func runPlayback(conf *Config, src capture.FrameSource) (*EventLoggingRecordingListener, error) {
	listener := &EventLoggingRecordingListener{verbose: conf.Motion.Verbose}

	processor, err := motion.NewMotionProcessor(
		motion.NewParams(conf.Motion),
		&conf.Recorder,
		src.FPS(),
		listener,
		new(recorder.NoWriteRecorder),
	)
	if err != nil {
		return nil, err
	}

	f := new(frame.Frame)
	for {
		if err := src.NextFrame(f); err != nil {
			if err != io.EOF {
				log.Printf("Error reading file occured %v", err)
			}
			break
		}
		if err := processor.Process(f); err != nil {
			return nil, err
		}
		listener.frameCount++
	}
	if err := processor.Close(); err != nil {
		return nil, err
	}
	listener.completed()
	return listener, nil
}
