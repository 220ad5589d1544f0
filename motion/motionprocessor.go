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
	"log"

	"github.com/TheCacophonyProject/motion-recorder/frame"
	"github.com/TheCacophonyProject/motion-recorder/recorder"
)

func NewMotionProcessor(
	params *Params,
	recorderConf *recorder.RecorderConfig,
	fps float64,
	listener RecordingListener,
	recorder recorder.Recorder,
) (*MotionProcessor, error) {
	frames, err := recorderConf.Frames(fps)
	if err != nil {
		return nil, err
	}
	w, err := recorderConf.NewWindow()
	if err != nil {
		return nil, err
	}

	return &MotionProcessor{
		params:         params,
		motionDetector: NewMotionDetector(params),
		segments:       NewSegmentRecorder(frames, w, listener, recorder),
		listener:       listener,
	}, nil
}

// MotionProcessor runs each frame through the motion detector and hands
// the result to the segment recorder.
type MotionProcessor struct {
	params         *Params
	motionDetector *Detector
	segments       *SegmentRecorder
	listener       RecordingListener
	tracker        ratioTracker
}

func (mp *MotionProcessor) Process(f *frame.Frame) error {
	isMotion := mp.motionDetector.Detect(f)
	if isMotion && mp.listener != nil {
		mp.listener.MotionDetected()
	}

	wasRecording := mp.segments.IsRecording()
	err := mp.segments.Step(f, isMotion)

	if mp.params.Get().Verbose {
		mp.trackRatio(wasRecording)
	}
	return err
}

func (mp *MotionProcessor) trackRatio(wasRecording bool) {
	isRecording := mp.segments.IsRecording()
	if isRecording {
		mp.tracker.update(mp.motionDetector.Ratio())
	}
	if wasRecording && !isRecording {
		log.Printf("segment motion ratio: %s", &mp.tracker)
		mp.tracker.reset()
	}
}

// Close ends any segment in progress.
func (mp *MotionProcessor) Close() error {
	return mp.segments.Close()
}

func (mp *MotionProcessor) IsRecording() bool {
	return mp.segments.IsRecording()
}

func (mp *MotionProcessor) Detector() *Detector {
	return mp.motionDetector
}

func (mp *MotionProcessor) Params() *Params {
	return mp.params
}
