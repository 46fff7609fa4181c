package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	bars        atomic.Int64
	lastBarUnix atomic.Int64 // unix seconds, время самого бара
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) TouchBar(t time.Time) {
	s.bars.Add(1)
	s.lastBarUnix.Store(t.Unix())
}

func (s *State) Bars() int64 { return s.bars.Load() }

func (s *State) LastBar() time.Time {
	u := s.lastBarUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0).UTC()
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
