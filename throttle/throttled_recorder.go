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

package throttle

import (
	"log"
	"math"
	"time"

	"github.com/juju/ratelimit"

	"github.com/TheCacophonyProject/motion-recorder/frame"
	"github.com/TheCacophonyProject/motion-recorder/recorder"
)

func NewThrottledRecorder(
	baseRecorder recorder.Recorder,
	conf *ThrottlerConfig,
	minSeconds float64,
	fps float64,
	listener ThrottledEventListener,
) *ThrottledRecorder {
	return NewThrottledRecorderWithClock(
		baseRecorder,
		conf,
		minSeconds,
		fps,
		listener,
		new(realClock),
	)
}

func NewThrottledRecorderWithClock(
	baseRecorder recorder.Recorder,
	conf *ThrottlerConfig,
	minSeconds float64,
	fps float64,
	listener ThrottledEventListener,
	clock ratelimit.Clock,
) *ThrottledRecorder {
	// The token bucket tracks the number of *frames* available for recording.
	bucketFrames := int64(math.Round(conf.BucketSize.Seconds() * fps))
	minFrames := int64(math.Round(minSeconds * fps))
	if minFrames < 1 {
		minFrames = 1
	}
	refillRate := float64(minFrames) / conf.MinRefill.Seconds()

	if minFrames > bucketFrames {
		log.Println("minimum recording length is greater than throttle bucket - recording will not be possible!")
	}

	bucket := ratelimit.NewBucketWithRateAndClock(refillRate, bucketFrames, clock)

	if listener == nil {
		listener = new(nullListener)
	}

	return &ThrottledRecorder{
		recorder:           baseRecorder,
		listener:           listener,
		bucket:             bucket,
		minRecordingLength: minFrames,
	}
}

// ThrottledRecorder wraps a standard recorder so that it stops
// recording (ie gets throttled) if requested to record too often.
// Segments recorded back to back usually show the same thing: a swaying
// branch, rain, or an animal that won't leave.
type ThrottledRecorder struct {
	recorder           recorder.Recorder
	listener           ThrottledEventListener
	bucket             *ratelimit.Bucket
	recording          bool
	minRecordingLength int64
}

type ThrottledEventListener interface {
	WhenThrottled()
}

type nullListener struct{}

func (lis *nullListener) WhenThrottled() {}

func (throttler *ThrottledRecorder) CheckCanRecord() error {
	return throttler.recorder.CheckCanRecord()
}

func (throttler *ThrottledRecorder) StartRecording(index int) error {
	if err := throttler.maybeStartRecording(index); err != nil {
		return err
	}
	if !throttler.recording {
		log.Print("recording not started due to throttling")
		throttler.listener.WhenThrottled()
	}
	return nil
}

func (throttler *ThrottledRecorder) StopRecording() error {
	if throttler.recording {
		throttler.recording = false
		return throttler.recorder.StopRecording()
	}
	return nil
}

// WriteFrame passes f on while the bucket has frames left. A throttled
// segment starts again, named after f, once the bucket has refilled.
func (throttler *ThrottledRecorder) WriteFrame(f *frame.Frame) error {
	if !throttler.recording {
		if err := throttler.maybeStartRecording(f.Index); err != nil {
			return err
		}
		if !throttler.recording {
			return nil
		}
	}

	if throttler.bucket.TakeAvailable(1) > 0 {
		return throttler.recorder.WriteFrame(f)
	}

	log.Print("recording throttled")
	throttler.listener.WhenThrottled()
	return throttler.StopRecording()
}

func (throttler *ThrottledRecorder) maybeStartRecording(index int) error {
	if throttler.bucket.Available() >= throttler.minRecordingLength {
		if err := throttler.recorder.StartRecording(index); err != nil {
			return err
		}
		throttler.recording = true
	}
	return nil
}

// realClock implements ratelimit.Clock in terms of standard time functions.
type realClock struct{}

// Now implements Clock.Now by calling time.Now.
func (realClock) Now() time.Time {
	return time.Now()
}

// Now implements Clock.Sleep by calling time.Sleep.
func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
