// Package scoring ranks catalog locations for the visit optimizer.
package scoring

import (
	"container/heap"

	"github.com/dayplanner/backend/internal/models"
)

// Curve maps an hour of the civil day to a time-of-day bonus.
type Curve func(hour int) float64

// Narrow is the single-day planning curve. Ranges are inclusive hours.
func Narrow(hour int) float64 {
	switch {
	case hour >= 9 && hour <= 11:
		return 2.0
	case hour >= 14 && hour <= 16:
		return 1.5
	case hour >= 17 && hour <= 18:
		return 1.0
	default:
		return 0.5
	}
}

// Extended is the slot-suggestion curve. Ranges are half-open [from, to).
func Extended(hour int) float64 {
	switch {
	case hour >= 5 && hour < 9:
		return 1.0
	case hour >= 9 && hour < 12:
		return 1.5
	case hour >= 12 && hour < 14:
		return 2.0
	case hour >= 14 && hour < 17:
		return 1.5
	case hour >= 17 && hour < 22:
		return 1.0
	default:
		return 0.5
	}
}

func Score(loc models.Location, timeWeight float64) float64 {
	return float64(loc.Priority)*10 + float64(loc.Exposure)*0.1 + timeWeight
}

type Candidate struct {
	Location models.Location
	Score    float64
	// Index is the catalog position, used to break score ties.
	Index int
}

// Ranking hands out candidates highest score first. Equal scores come out in
// catalog order.
type Ranking struct {
	h candidateHeap
}

func NewRanking(locations []models.Location, curve Curve, hour int) *Ranking {
	weight := curve(hour)
	h := make(candidateHeap, 0, len(locations))
	for i, loc := range locations {
		h = append(h, Candidate{Location: loc, Score: Score(loc, weight), Index: i})
	}
	heap.Init(&h)
	return &Ranking{h: h}
}

func (r *Ranking) Len() int {
	return r.h.Len()
}

func (r *Ranking) Pop() (Candidate, bool) {
	if r.h.Len() == 0 {
		return Candidate{}, false
	}
	return heap.Pop(&r.h).(Candidate), true
}

type candidateHeap []Candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].Score == h[j].Score {
		return h[i].Index < h[j].Index
	}
	return h[i].Score > h[j].Score
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(Candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
