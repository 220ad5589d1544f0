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

// Package metrics exports recorder activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motion_recorder_frames_total",
		Help: "Total number of frames read from the source",
	})

	MotionFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motion_recorder_motion_frames_total",
		Help: "Total number of frames classified as motion",
	})

	SegmentsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motion_recorder_segments_started_total",
		Help: "Total number of segments opened",
	})

	SegmentsEndedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motion_recorder_segments_ended_total",
		Help: "Total number of segments closed",
	})

	SegmentFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motion_recorder_segment_failures_total",
		Help: "Total number of segments that could not be started",
	})
)

// Listener counts recording events. It implements
// motion.RecordingListener.
type Listener struct{}

func (Listener) MotionDetected()       { MotionFramesTotal.Inc() }
func (Listener) RecordingStarted(int)  { SegmentsStartedTotal.Inc() }
func (Listener) RecordingEnded()       { SegmentsEndedTotal.Inc() }
func (Listener) RecordingFailed(error) { SegmentFailuresTotal.Inc() }
