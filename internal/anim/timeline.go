package anim

import "time"

// Phase names a stage of the layer-assembly storyboard.
type Phase string

const (
	PhasePending  Phase = "pending"
	PhaseScan     Phase = "scan"
	PhaseReveal   Phase = "reveal"
	PhaseHold     Phase = "hold"
	PhaseAssemble Phase = "assemble"
	PhaseFinalize Phase = "finalize"
	PhaseDone     Phase = "done"
)

// Stage ends at End, measured from the start of the storyboard (after the
// start delay).
type Stage struct {
	Phase  Phase
	End    time.Duration
	Status string
}

// Timeline is the hero storyboard. Stages must be ordered by End.
type Timeline struct {
	StartDelay time.Duration
	Stages     []Stage
}

// DefaultTimeline returns the production storyboard.
func DefaultTimeline() Timeline {
	return Timeline{
		StartDelay: 300 * time.Millisecond,
		Stages: []Stage{
			{Phase: PhaseScan, End: 2000 * time.Millisecond, Status: "SCANNING MODEL"},
			{Phase: PhaseReveal, End: 3200 * time.Millisecond, Status: "ANALYZING LAYERS"},
			{Phase: PhaseHold, End: 4500 * time.Millisecond, Status: "LAYERS DETECTED"},
			{Phase: PhaseAssemble, End: 7500 * time.Millisecond, Status: "ASSEMBLING MODEL"},
			{Phase: PhaseFinalize, End: 8500 * time.Millisecond, Status: "COMPLETE"},
		},
	}
}

// Duration is the time from mount until the storyboard is done.
func (t Timeline) Duration() time.Duration {
	if len(t.Stages) == 0 {
		return t.StartDelay
	}
	return t.StartDelay + t.Stages[len(t.Stages)-1].End
}

// Frame is the storyboard state at one instant.
type Frame struct {
	Phase    Phase
	Progress float64
	Status   string
}

// At returns the frame for elapsed time since mount.
func (t Timeline) At(elapsed time.Duration) Frame {
	e := elapsed - t.StartDelay
	if e < 0 {
		return Frame{Phase: PhasePending}
	}
	var begin time.Duration
	for _, s := range t.Stages {
		if e < s.End {
			span := s.End - begin
			p := 1.0
			if span > 0 {
				p = float64(e-begin) / float64(span)
			}
			return Frame{Phase: s.Phase, Progress: p, Status: s.Status}
		}
		begin = s.End
	}
	status := "COMPLETE"
	if n := len(t.Stages); n > 0 {
		status = t.Stages[n-1].Status
	}
	return Frame{Phase: PhaseDone, Progress: 1, Status: status}
}

// LayerTransform is the CSS-style transform of one layer image.
type LayerTransform struct {
	TranslateY float64 `json:"translateY"`
	TranslateZ float64 `json:"translateZ"`
	RotateX    float64 `json:"rotateX"`
	Scale      float64 `json:"scale"`
	Opacity    float64 `json:"opacity"`
}

const (
	layerSpacing  = 110.0
	layerDepth    = 15.0
	layerTilt     = 10.0
	layerTiltStep = 3.0
	layerStagger  = 0.12
)

// Layer returns the transform of layer i of n for frame f. Only the last
// layer stays visible once the layers have assembled.
func Layer(i, n int, f Frame) LayerTransform {
	offset := (float64(i) - float64(n-1)/2) * layerSpacing
	rotation := layerTilt - float64(i)*layerTiltStep
	depth := float64(i) * layerDepth
	last := i == n-1

	switch f.Phase {
	case PhasePending, PhaseScan:
		return LayerTransform{Scale: 0.85}

	case PhaseReveal:
		stagger := float64(i) * layerStagger
		lp := Clamp01((f.Progress - stagger) / (1 - stagger*0.5))
		eased := EaseOutQuart(lp)
		return LayerTransform{
			TranslateY: offset * eased,
			TranslateZ: depth,
			RotateX:    rotation * eased,
			Scale:      0.55 + 0.05*eased,
			Opacity:    eased * 0.9,
		}

	case PhaseHold:
		settle := EaseOutCubic(Clamp01(f.Progress * 3))
		return LayerTransform{
			TranslateY: offset,
			TranslateZ: depth,
			RotateX:    rotation,
			Scale:      0.6 + 0.02*settle,
			Opacity:    0.9 + settle*0.05,
		}

	case PhaseAssemble:
		eased := EaseInOutQuart(f.Progress)
		opacity := 0.95
		switch {
		case last:
			opacity = 0.95 + 0.05*eased
		case f.Progress > 0.7:
			opacity = 0.95 - EaseOutCubic((f.Progress-0.7)/0.3)*0.95
		}
		return LayerTransform{
			TranslateY: offset * (1 - eased),
			TranslateZ: depth * (1 - eased),
			RotateX:    rotation * (1 - eased),
			Scale:      0.62 + 0.38*eased,
			Opacity:    opacity,
		}

	default:
		t := LayerTransform{Scale: 1}
		if last {
			t.Opacity = 1
		}
		return t
	}
}

// HeroOpacity is the opacity of the full hero image shown while scanning.
func HeroOpacity(f Frame) float64 {
	switch f.Phase {
	case PhasePending, PhaseScan:
		return 1
	case PhaseReveal:
		return 1 - EaseOutQuart(f.Progress)
	default:
		return 0
	}
}

// ScanLine returns the scan line's vertical position (percent of height)
// and opacity. It fades in at 20%, sweeps to 80% and fades out.
func ScanLine(f Frame) (top, opacity float64) {
	const (
		fadeInEnd   = 0.1
		sweepEnd    = 0.85
		topStart    = 20.0
		topDistance = 60.0
	)
	if f.Phase != PhaseScan {
		return topStart, 0
	}
	p := f.Progress
	switch {
	case p < fadeInEnd:
		return topStart, EaseOutCubic(p / fadeInEnd)
	case p < sweepEnd:
		move := EaseInOutCubic((p - fadeInEnd) / (sweepEnd - fadeInEnd))
		return topStart + move*topDistance, 1
	default:
		return topStart + topDistance, 1 - EaseOutCubic((p-sweepEnd)/(1-sweepEnd))
	}
}
