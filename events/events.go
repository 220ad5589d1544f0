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

// Package events queues recorder events with the event reporter.
package events

import (
	"log"
	"time"

	"github.com/TheCacophonyProject/event-reporter/eventclient"

	"github.com/TheCacophonyProject/motion-recorder/recorder"
)

const (
	SegmentEventType  = "motion-segment"
	ThrottleEventType = "throttle"
)

// Reporter queues an event for each new segment and each time recording
// is throttled. It implements motion.RecordingListener and
// throttle.ThrottledEventListener.
type Reporter struct {
	outputDir string
	ext       string
	addEvent  func(eventclient.Event) error
	now       func() time.Time
}

// NewReporter returns a Reporter naming segments the way the recorder
// writing to outputDir does.
func NewReporter(outputDir, ext string) *Reporter {
	return &Reporter{
		outputDir: outputDir,
		ext:       ext,
		addEvent:  eventclient.AddEvent,
		now:       time.Now,
	}
}

func (r *Reporter) MotionDetected() {}

func (r *Reporter) RecordingStarted(index int) {
	r.queue(SegmentEventType, map[string]interface{}{
		"segment": recorder.SegmentName(r.outputDir, index, r.ext),
		"frame":   index,
	})
}

func (r *Reporter) RecordingEnded() {}

func (r *Reporter) RecordingFailed(error) {}

func (r *Reporter) WhenThrottled() {
	r.queue(ThrottleEventType, map[string]interface{}{
		"description": map[string]interface{}{
			"type": ThrottleEventType,
		},
	})
}

func (r *Reporter) queue(eventType string, details map[string]interface{}) {
	err := r.addEvent(eventclient.Event{
		Timestamp: r.now(),
		Type:      eventType,
		Details:   details,
	})
	if err != nil {
		log.Printf("Could not record %s event: %s", eventType, err)
	}
}
