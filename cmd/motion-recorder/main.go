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
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	config "github.com/TheCacophonyProject/go-config"
	arg "github.com/alexflint/go-arg"
	"github.com/coreos/go-systemd/daemon"
	yaml "gopkg.in/yaml.v2"
	"periph.io/x/periph/host"

	"github.com/TheCacophonyProject/motion-recorder/capture"
	"github.com/TheCacophonyProject/motion-recorder/events"
	"github.com/TheCacophonyProject/motion-recorder/frame"
	"github.com/TheCacophonyProject/motion-recorder/metrics"
	"github.com/TheCacophonyProject/motion-recorder/motion"
	"github.com/TheCacophonyProject/motion-recorder/output"
	"github.com/TheCacophonyProject/motion-recorder/recorder"
	"github.com/TheCacophonyProject/motion-recorder/throttle"
)

const (
	frameLogIntervalFirstMinSecs = 15
	frameLogIntervalSecs         = 60 * 5
	sdNotifyIntervalSecs         = 5
)

var version = "<not set>"

type Args struct {
	ConfigFile   string `arg:"-c,--config" help:"path to configuration file"`
	DeviceConfig string `arg:"--device-config" help:"directory of the device wide configuration holding the recording window and location"`
	Source       string `arg:"-s,--source" help:"video file, camera device number or unix:<socket path> to read frames from"`
	Timestamps   bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
	Verbose      bool   `arg:"-v,--verbose" help:"Make logging more verbose"`
	TestFile     string `arg:"-f,--test-file" help:"Run a file through the motion detector to see what would be recorded"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/motion-recorder.yaml"
	args.Source = "0"
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()

	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("running version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	if args.Verbose {
		conf.Verbose = true
		conf.Motion.Verbose = true
	}
	if args.DeviceConfig != "" {
		deviceConf, err := config.New(args.DeviceConfig)
		if err != nil {
			return err
		}
		if err := conf.Recorder.LoadDeviceConfig(deviceConf); err != nil {
			return err
		}
	}

	logConfig(conf)

	if args.TestFile != "" {
		src, err := capture.Open(context.Background(), capture.FilePath(args.TestFile))
		if err != nil {
			return err
		}
		defer src.Close()
		results, err := runPlayback(conf, src)
		if err != nil {
			return err
		}
		log.Print(results)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("deleting temp files")
	if err := output.DeleteTempFiles(conf.OutputDir); err != nil {
		return err
	}
	deleteSnapshot(conf.OutputDir)

	source := capture.ParseSource(args.Source)
	log.Printf("opening %s", source)
	src, err := capture.Open(ctx, source)
	if err != nil {
		if ctx.Err() != nil {
			log.Print("shutting down")
			return nil
		}
		return err
	}
	defer src.Close()
	log.Printf("source: %dx%d %s at %.1f fps", src.Width(), src.Height(), src.Format(), src.FPS())

	params := motion.NewParams(conf.Motion)
	snapshots := newSnapshotter(conf.OutputDir)

	if conf.DBusService {
		log.Println("starting d-bus service")
		if err := startService(snapshots, params); err != nil {
			return err
		}
	}

	if conf.MetricsAddress != "" {
		srv := metrics.StartServer(conf.MetricsAddress)
		defer srv.Close()
	}

	recordingListeners := listeners{metrics.Listener{}}
	var throttleListener throttle.ThrottledEventListener
	if conf.Events {
		reporter := events.NewReporter(conf.OutputDir, conf.Ext())
		recordingListeners = append(recordingListeners, reporter)
		throttleListener = reporter
	}
	if conf.LEDs.Recording != "" {
		log.Println("host initialisation")
		if _, err := host.Init(); err != nil {
			return err
		}
		led, err := newRecordingLED(conf.LEDs.Recording)
		if err != nil {
			return err
		}
		recordingListeners = append(recordingListeners, led)
	}

	rec, closeRecorder, err := newRecorder(conf, src)
	if err != nil {
		return err
	}
	defer closeRecorder()
	if conf.Throttler.ApplyThrottling {
		minRecordingLength := conf.Recorder.PreRollSecs + conf.Recorder.PostRollSecs
		rec = throttle.NewThrottledRecorder(rec, &conf.Throttler, minRecordingLength, src.FPS(), throttleListener)
	}

	processor, err := motion.NewMotionProcessor(params, &conf.Recorder, src.FPS(), recordingListeners, rec)
	if err != nil {
		return err
	}

	daemon.SdNotify(false, daemon.SdNotifyReady)

	err = processFrames(ctx, src, processor, snapshots)
	if closeErr := processor.Close(); closeErr != nil {
		log.Printf("failed to close segment: %v", closeErr)
		if err == nil {
			err = closeErr
		}
	}
	return err
}

func newRecorder(conf *Config, src capture.FrameSource) (recorder.Recorder, func(), error) {
	spec := output.Spec{
		Width:  src.Width(),
		Height: src.Height(),
		FPS:    src.FPS(),
		Format: src.Format(),
	}
	if conf.OutputFormat == formatCPTV {
		motionYAML, err := yaml.Marshal(conf.Motion)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to convert motion config to YAML: %v", err)
		}
		cptvRecorder := output.NewCPTVFileRecorder(conf.OutputDir, conf.MinDiskSpace, spec, output.CPTVHeader{
			DeviceName:   conf.DeviceName,
			PreRollSecs:  conf.Recorder.PreRollSecs,
			MotionConfig: string(motionYAML),
		})
		return cptvRecorder, cptvRecorder.Stop, nil
	}
	return output.NewVideoFileRecorder(conf.OutputDir, conf.Codec, conf.MinDiskSpace, spec), func() {}, nil
}

// processFrames reads frames until the source runs out or ctx is
// cancelled. Running out of frames is not an error and neither is a read
// cut short by cancelling ctx.
func processFrames(ctx context.Context, src capture.FrameSource, processor *motion.MotionProcessor, snapshots *snapshotter) error {
	fps := src.FPS()
	frameLogIntervalFirstMin := atLeastOne(frameLogIntervalFirstMinSecs * fps)
	frameLogInterval := atLeastOne(frameLogIntervalSecs * fps)
	framesPerSdNotify := atLeastOne(sdNotifyIntervalSecs * fps)

	f := new(frame.Frame)
	totalFrames := 0
	notifyCount := 0
	for {
		select {
		case <-ctx.Done():
			log.Print("shutting down")
			return nil
		default:
		}

		if err := src.NextFrame(f); err != nil {
			if ctx.Err() != nil {
				log.Print("shutting down")
				return nil
			}
			if err == io.EOF {
				log.Printf("source finished after %d frames", totalFrames)
				return nil
			}
			return err
		}
		totalFrames++
		metrics.FramesTotal.Inc()

		if totalFrames%frameLogIntervalFirstMin == 0 &&
			totalFrames <= 4*frameLogIntervalFirstMin || totalFrames%frameLogInterval == 0 {
			log.Printf("%d frames processed", totalFrames)
		}

		if notifyCount++; notifyCount >= framesPerSdNotify {
			daemon.SdNotify(false, "WATCHDOG=1")
			notifyCount = 0
		}

		snapshots.update(f)
		if err := processor.Process(f); err != nil {
			return err
		}
	}
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

func logConfig(conf *Config) {
	log.Printf("device name: %s", conf.DeviceName)
	log.Printf("output dir: %s", conf.OutputDir)
	log.Printf("output format: %s", conf.OutputFormat)
	log.Printf("pre-roll: %vs, post-roll: %vs", conf.Recorder.PreRollSecs, conf.Recorder.PostRollSecs)
	if conf.Recorder.MaxSecs > 0 {
		log.Printf("maximum segment length: %vs", conf.Recorder.MaxSecs)
	}
	log.Printf("minimum disk space: %d", conf.MinDiskSpace)
	log.Printf("motion: %+v", conf.Motion)
	log.Printf("throttler: %+v", conf.Throttler)
	if conf.Recorder.WindowStart != "" {
		log.Printf("recording window: %s to %s", conf.Recorder.WindowStart, conf.Recorder.WindowEnd)
	}
}
