package handler

import (
	"net/http"

	"github.com/3dmm/site/internal/anim"
	"github.com/3dmm/site/internal/site"
)

// HeroHandler serves the hero storyboard and counter configuration.
type HeroHandler struct {
	resp heroResponse
}

type heroStage struct {
	Phase  anim.Phase `json:"phase"`
	EndMS  int64      `json:"endMs"`
	Status string     `json:"status"`
}

type heroRotator struct {
	IntervalMS int64 `json:"intervalMs"`
	ExitMS     int64 `json:"exitMs"`
}

type heroResponse struct {
	StartDelayMS      int64              `json:"startDelayMs"`
	DurationMS        int64              `json:"durationMs"`
	Stages            []heroStage        `json:"stages"`
	Layers            []site.Image       `json:"layers"`
	Taglines          []site.Tagline     `json:"taglines"`
	TaglineDelayMS    int64              `json:"taglineDelayMs"`
	AutoScrollDelayMS int64              `json:"autoScrollDelayMs"`
	Counters          []anim.CounterSpec `json:"counters"`
	CounterDelaysMS   []int64            `json:"counterDelaysMs"`
	Rotator           heroRotator        `json:"rotator"`
}

// NewHeroHandler precomputes the response; the storyboard and content are
// fixed for the life of the process.
func NewHeroHandler(tl anim.Timeline, hero site.Hero) *HeroHandler {
	counters := hero.Counters
	if len(counters) == 0 {
		counters = anim.DefaultCounters()
	}
	resp := heroResponse{
		StartDelayMS:      tl.StartDelay.Milliseconds(),
		DurationMS:        tl.Duration().Milliseconds(),
		Stages:            make([]heroStage, len(tl.Stages)),
		Layers:            hero.Layers,
		Taglines:          hero.Taglines,
		TaglineDelayMS:    anim.TaglineDelay.Milliseconds(),
		AutoScrollDelayMS: anim.AutoScrollDelay.Milliseconds(),
		Counters:          counters,
		CounterDelaysMS:   make([]int64, len(anim.CounterDelays)),
	}
	for i, s := range tl.Stages {
		resp.Stages[i] = heroStage{Phase: s.Phase, EndMS: s.End.Milliseconds(), Status: s.Status}
	}
	for i, d := range anim.CounterDelays {
		resp.CounterDelaysMS[i] = d.Milliseconds()
	}
	rot := anim.DefaultRotator(len(hero.Taglines))
	resp.Rotator = heroRotator{IntervalMS: rot.Interval.Milliseconds(), ExitMS: rot.Exit.Milliseconds()}
	return &HeroHandler{resp: resp}
}

// Hero handles GET /api/hero.
func (h *HeroHandler) Hero(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.resp)
}
