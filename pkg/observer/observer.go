/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package observer carries the engine's statistics records and invariant-
// violation diagnostics out to whatever is watching, the same
// dedupe-then-publish shape the teacher uses for Kubernetes events, minus
// the Kubernetes event sink (spec §6: "Emitted through an observer
// callback").
package observer

import (
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// EventType classifies an Event for a consumer that wants to triage
// quickly without parsing Reason/Message.
type EventType string

const (
	Info    EventType = "Info"
	Warning EventType = "Warning"
)

// Event is one occurrence an observer may want to record, log, or
// forward. InvolvedObject is a free-form identifier (a bot ID, station
// ID, or order ID) rather than a Kubernetes runtime.Object, since nothing
// in this engine has an API-server identity.
type Event struct {
	InvolvedObject string
	Type           EventType
	Reason         string
	Message        string
	DedupeValues   []string
	DedupeTimeout  time.Duration
	RateLimiter    *rate.Limiter
}

func (e Event) dedupeKey() string {
	return fmt.Sprintf("%s-%s", strings.ToLower(e.Reason), strings.Join(e.DedupeValues, "-"))
}

// Recorder is the callback seam every package that can fail or wants to
// report a statistic publishes through, rather than importing a concrete
// sink.
type Recorder interface {
	Publish(events ...Event)
}

const defaultDedupeTimeout = 2 * time.Minute

// recorder forwards deduped, rate-limited events to sink.
type recorder struct {
	sink  func(Event)
	cache *cache.Cache
}

// NewRecorder returns a Recorder that calls sink for every event that
// survives deduping and rate limiting. sink is the simulator shell's
// actual callback (logging, a channel, a test spy); this package never
// assumes what's on the other end.
func NewRecorder(sink func(Event)) Recorder {
	return &recorder{sink: sink, cache: cache.New(defaultDedupeTimeout, 10*time.Second)}
}

func (r *recorder) Publish(events ...Event) {
	for _, evt := range events {
		r.publishEvent(evt)
	}
}

func (r *recorder) publishEvent(evt Event) {
	timeout := defaultDedupeTimeout
	if evt.DedupeTimeout != 0 {
		timeout = evt.DedupeTimeout
	}
	if len(evt.DedupeValues) > 0 && !r.shouldCreateEvent(evt.dedupeKey(), timeout) {
		return
	}
	if evt.RateLimiter != nil && !evt.RateLimiter.Allow() {
		return
	}
	if r.sink != nil {
		r.sink(evt)
	}
}

func (r *recorder) shouldCreateEvent(key string, timeout time.Duration) bool {
	if _, exists := r.cache.Get(key); exists {
		return false
	}
	r.cache.Set(key, nil, timeout)
	return true
}

// NopRecorder discards every event; useful as a default collaborator in
// tests that don't care about statistics.
type NopRecorder struct{}

func (NopRecorder) Publish(...Event) {}
