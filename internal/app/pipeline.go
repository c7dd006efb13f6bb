package app

import (
	"log"
	"time"

	"github.com/ayusman/handsculpt/internal/detector"
)

// frameRate tracks whether the camera runs at the idle or the active rate.
// Motion switches to active at once; StillnessTimeout without motion switches
// back.
type frameRate struct {
	active     bool
	lastMotion time.Time
}

// observe records one motion sample taken at now and returns the new FPS
// when the rate changes, or 0.
func (r *frameRate) observe(moving bool, now time.Time) int {
	switch {
	case moving:
		r.lastMotion = now
		if !r.active {
			r.active = true
			return ActiveFPS
		}
	case r.active && now.Sub(r.lastMotion) > StillnessTimeout:
		r.active = false
		return IdleFPS
	}
	return 0
}

func fpsInterval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}

// runPipeline reads the camera until stopCh closes. Hand detection runs on
// every frame, still or not, so held pinches and bin dwells keep
// receiving frames; motion only picks the frame rate.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	rate := frameRate{lastMotion: time.Now()}
	ticker := time.NewTicker(fpsInterval(IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}
		if !a.IsEnabled() {
			continue
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			log.Printf("Error reading frame: %v", err)
			continue
		}

		moving, _ := a.motion.Detect(frame)
		if fps := rate.observe(moving, time.Now()); fps != 0 {
			a.camera.SetFPS(fps)
			ticker.Reset(fpsInterval(fps))
			log.Printf("Camera rate now %d FPS", fps)
		}

		var hands []detector.HandLandmarks
		if d := a.Detector(); d != nil {
			hands, err = d.Detect(frame)
		}
		frame.Close()
		if err != nil {
			log.Printf("Error detecting hands: %v", err)
			continue
		}

		a.HandleFrame(detector.NewFrame(detector.ValidHands(hands), time.Now()))
	}
}
