// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"github.com/relabs-tech/lighthouse_osc/internal/logging"
	"github.com/relabs-tech/lighthouse_osc/internal/tracking"
)

// EventProcessor drains runtime events once per cycle.
type EventProcessor struct {
	// Filter is the only device whose events are reported; -1 reports all.
	// Events without a device are always reported. Stop events are never
	// filtered.
	Filter int
	// Report receives ignorable events that pass the filter. nil logs them.
	Report func(tracking.Classified)
}

// NewEventProcessor returns a processor that reports through report.
func NewEventProcessor(filter int, report func(tracking.Classified)) *EventProcessor {
	return &EventProcessor{Filter: filter, Report: report}
}

// Drain polls src until no event is pending. It returns false as soon as a
// stop event is seen; events queued behind it stay in the source.
func (p *EventProcessor) Drain(src tracking.PoseSource) bool {
	for {
		ev, ok := src.PollNextEvent()
		if !ok {
			return true
		}
		c := tracking.ClassifyEvent(ev)
		if c.Disposition == tracking.Stop {
			logging.Logf("events: %s, stopping", c.Detail)
			return false
		}
		if !p.reports(ev) {
			continue
		}
		if p.Report != nil {
			p.Report(c)
		} else {
			logging.Logf("events: %s", c.Detail)
		}
	}
}

func (p *EventProcessor) reports(ev tracking.Event) bool {
	if p.Filter < 0 || !ev.HasDevice() {
		return true
	}
	return ev.DeviceIndex == uint32(p.Filter)
}
