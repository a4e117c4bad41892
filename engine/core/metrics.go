package core

import "sync"

const frameAverageWindow = 30

// MetricsState tracks frame pacing: a rolling frame-time average and a
// once-per-second FPS figure.
type MetricsState struct {
	frameCounter       uint8
	frameTimes         [frameAverageWindow]float64
	frameTimeAvg       float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

var onceMetrics sync.Once
var metricsState *MetricsState

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{}
	})
	return nil
}

// MetricsUpdate records one frame's elapsed time in seconds.
func MetricsUpdate(frameElapsed float64) {
	frameMS := frameElapsed * 1000.0
	metricsState.frameTimes[metricsState.frameCounter] = frameMS
	if metricsState.frameCounter == frameAverageWindow-1 {
		sum := 0.0
		for i := 0; i < frameAverageWindow; i++ {
			sum += metricsState.frameTimes[i]
		}
		metricsState.frameTimeAvg = sum / frameAverageWindow
	}
	metricsState.frameCounter++
	metricsState.frameCounter %= frameAverageWindow

	metricsState.accumulatedFrameMS += frameMS
	if metricsState.accumulatedFrameMS > 1000 {
		metricsState.fps = float64(metricsState.frames)
		metricsState.accumulatedFrameMS -= 1000
		metricsState.frames = 0
	}
	metricsState.frames++
}

// MetricsFPS returns the frame count of the last full second.
func MetricsFPS() float64 {
	return metricsState.fps
}

// MetricsFrameTime returns the rolling average frame time in milliseconds.
func MetricsFrameTime() float64 {
	return metricsState.frameTimeAvg
}

// MetricsFrame returns FPS and average frame time together.
func MetricsFrame() (float64, float64) {
	return metricsState.fps, metricsState.frameTimeAvg
}
