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

package motion

import (
	"errors"
	"fmt"
	"time"

	"github.com/TheCacophonyProject/window"

	"github.com/TheCacophonyProject/motion-recorder/frame"
	"github.com/TheCacophonyProject/motion-recorder/loglimiter"
	"github.com/TheCacophonyProject/motion-recorder/recorder"
)

const minLogInterval = time.Minute

type RecordingListener interface {
	MotionDetected()
	RecordingStarted(index int)
	RecordingEnded()
	RecordingFailed(err error)
}

// FrameWriterFunc adapts a function to a FrameWriter.
type FrameWriterFunc func(*frame.Frame) error

func (fn FrameWriterFunc) WriteFrame(f *frame.Frame) error {
	return fn(f)
}

func NewSegmentRecorder(
	frames recorder.Frames,
	w *window.Window,
	listener RecordingListener,
	recorder recorder.Recorder,
) *SegmentRecorder {
	return &SegmentRecorder{
		frameLoop:      NewFrameLoop(frames.PreRoll),
		postRollFrames: frames.PostRoll,
		maxFrames:      frames.Max,
		window:         w,
		listener:       listener,
		recorder:       recorder,
		log:            loglimiter.New(minLogInterval),
	}
}

// SegmentRecorder turns the per frame motion decisions into segments. A
// segment starts with the frames held for the pre-roll, then every frame
// from the first motion frame until post-roll frames in a row have had no
// motion.
type SegmentRecorder struct {
	frameLoop      *FrameLoop
	postRollFrames int
	maxFrames      int
	window         *window.Window
	listener       RecordingListener
	recorder       recorder.Recorder
	log            *loglimiter.LogLimiter

	isRecording   bool
	noMotion      int
	framesWritten int
	segmentIndex  int
}

// Step handles one frame. Failing to start a segment is logged and
// retried on the next frame with motion. Failing to write to an open
// segment abandons the segment and returns the error.
func (sr *SegmentRecorder) Step(f *frame.Frame, isMotion bool) error {
	// The frame joins the pre-roll after any replay so a new segment
	// never holds its first motion frame twice.
	keep := true
	defer func() {
		if keep {
			sr.frameLoop.Add(f)
		}
	}()

	switch {
	case !sr.isRecording && !isMotion:
		return nil
	case !sr.isRecording:
		if err := sr.startRecording(f.Index); err != nil {
			sr.log.Printf("Recording not started: %v", err)
			if sr.listener != nil {
				sr.listener.RecordingFailed(err)
			}
			return nil
		}
		if err := sr.frameLoop.Drain(FrameWriterFunc(sr.writeFrame)); err != nil {
			return sr.abandon(err)
		}
	case isMotion:
		sr.noMotion = 0
	default:
		sr.noMotion++
		if sr.noMotion > sr.postRollFrames {
			return sr.stopRecording()
		}
	}

	if err := sr.writeFrame(f); err != nil {
		return sr.abandon(err)
	}
	if sr.maxFrames > 0 && sr.framesWritten >= sr.maxFrames {
		sr.log.Printf("segment %d reached the maximum length", sr.segmentIndex)
		// Everything in the loop is already in this segment; the next
		// one carries on from the following frame.
		sr.frameLoop.Clear()
		keep = false
		return sr.stopRecording()
	}
	return nil
}

// Close ends any open segment.
func (sr *SegmentRecorder) Close() error {
	if !sr.isRecording {
		return nil
	}
	return sr.stopRecording()
}

func (sr *SegmentRecorder) IsRecording() bool {
	return sr.isRecording
}

func (sr *SegmentRecorder) canStartWriting() error {
	if sr.window != nil && !sr.window.Active() {
		return errors.New("motion detected but outside of recording window")
	}
	return sr.recorder.CheckCanRecord()
}

func (sr *SegmentRecorder) startRecording(index int) error {
	if err := sr.canStartWriting(); err != nil {
		return err
	}
	if err := sr.recorder.StartRecording(index); err != nil {
		return err
	}

	sr.isRecording = true
	sr.noMotion = 0
	sr.framesWritten = 0
	sr.segmentIndex = index
	if sr.listener != nil {
		sr.listener.RecordingStarted(index)
	}
	return nil
}

func (sr *SegmentRecorder) stopRecording() error {
	sr.isRecording = false
	sr.noMotion = 0
	sr.framesWritten = 0
	if sr.listener != nil {
		sr.listener.RecordingEnded()
	}
	return sr.recorder.StopRecording()
}

func (sr *SegmentRecorder) writeFrame(f *frame.Frame) error {
	if err := sr.recorder.WriteFrame(f); err != nil {
		return err
	}
	sr.framesWritten++
	return nil
}

func (sr *SegmentRecorder) abandon(cause error) error {
	index := sr.segmentIndex
	if err := sr.stopRecording(); err != nil {
		sr.log.Printf("Failed to close segment %d: %v", index, err)
	}
	return fmt.Errorf("segment %d abandoned: %w", index, cause)
}
