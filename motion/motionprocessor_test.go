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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/motion-recorder/recorder"
)

const testFPS = 10

func RecorderTestConfig() *recorder.RecorderConfig {
	config := new(recorder.RecorderConfig)
	config.PreRollSecs = 1
	config.PostRollSecs = 1
	return config
}

func MotionTestConfig() MotionConfig {
	return DefaultMotionConfig()
}

func SetupTest(t *testing.T, mConf MotionConfig, rConf *recorder.RecorderConfig) (*TestRecorder, *TestListener, *TestFrameMaker) {
	rec := new(TestRecorder)
	listener := new(TestListener)
	processor, err := NewMotionProcessor(NewParams(mConf), rConf, testFPS, listener, rec)
	require.NoError(t, err)

	scenarioMaker := MakeTestFrameMaker(processor)
	return rec, listener, scenarioMaker
}

func TestRecorderNotTriggeredUnlessSeesMovement(t *testing.T) {
	recorder, listener, scenarioMaker := SetupTest(t, MotionTestConfig(), RecorderTestConfig())
	scenarioMaker.AddBackgroundFrames(50)
	assert.False(t, recorder.IsRecording())
	assert.Equal(t, 0, listener.motion)
}

func TestRecorderTriggeredAndHasPreRollAndPostRoll(t *testing.T) {
	recorder, listener, scenarioMaker := SetupTest(t, MotionTestConfig(), RecorderTestConfig())

	// The spot is first seen moving on the frame after it appears and
	// for one frame after it goes.
	scenarioMaker.AddBackgroundFrames(20).AddMovingDotFrames(3).AddBackgroundFrames(20)
	assert.Empty(t, scenarioMaker.errs)
	assert.False(t, recorder.IsRecording())
	assert.Equal(t, 3, listener.motion)
	assert.Equal(t, []int{21}, recorder.starts)
	assert.Equal(t, FramesFrom(11, 33), recorder.GetRecordedFramesIds())
}

func TestCanMakeMultipleRecordings(t *testing.T) {
	recorder, _, scenarioMaker := SetupTest(t, MotionTestConfig(), RecorderTestConfig())

	scenarioMaker.AddBackgroundFrames(20).AddMovingDotFrames(3).AddBackgroundFrames(20)
	assert.Equal(t, FramesFrom(11, 33), recorder.GetRecordedFramesIds())

	scenarioMaker.AddMovingDotFrames(3).AddBackgroundFrames(20)
	assert.Equal(t, []int{21, 44}, recorder.starts)
	assert.Equal(t, FramesFrom(34, 56), recorder.GetRecordedFramesIds())
}

func TestSmallSpotIgnoredWithHighSensitivity(t *testing.T) {
	conf := MotionTestConfig()
	conf.Sensitivity = 0.2
	recorder, _, scenarioMaker := SetupTest(t, conf, RecorderTestConfig())

	scenarioMaker.AddBackgroundFrames(20).AddMovingDotFrames(10).AddBackgroundFrames(20)
	assert.Empty(t, recorder.starts)
}

func TestProcessorCloseEndsRecording(t *testing.T) {
	rec := new(TestRecorder)
	processor, err := NewMotionProcessor(NewParams(MotionTestConfig()), RecorderTestConfig(), testFPS, nil, rec)
	require.NoError(t, err)
	scenarioMaker := MakeTestFrameMaker(processor)

	scenarioMaker.AddBackgroundFrames(20).AddMovingDotFrames(10)
	assert.True(t, processor.IsRecording())

	require.NoError(t, processor.Close())
	assert.False(t, rec.IsRecording())
	assert.Equal(t, FramesFrom(11, 29), rec.GetRecordedFramesIds())
}

func TestProcessorNeedsUsableFrameRate(t *testing.T) {
	conf := RecorderTestConfig()
	conf.PreRollSecs = 0.01
	_, err := NewMotionProcessor(NewParams(MotionTestConfig()), conf, testFPS, nil, new(TestRecorder))
	assert.EqualError(t, err, "pre-roll of 0.01s is less than one frame at 10 fps")
}

func TestParamsChangedWhileRunning(t *testing.T) {
	rec := new(TestRecorder)
	processor, err := NewMotionProcessor(NewParams(MotionTestConfig()), RecorderTestConfig(), testFPS, nil, rec)
	require.NoError(t, err)
	scenarioMaker := MakeTestFrameMaker(processor)

	scenarioMaker.AddBackgroundFrames(20)
	conf := processor.Params().Get()
	conf.Sensitivity = 0.2
	require.NoError(t, processor.Params().Set(conf))

	scenarioMaker.AddMovingDotFrames(10).AddBackgroundFrames(20)
	assert.Empty(t, rec.starts)
	assert.Equal(t, 0.0, processor.Detector().Ratio())
}
