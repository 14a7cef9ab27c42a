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

package observer

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fleetsim/warehouse-engine/pkg/model"
)

// dumpPrinter pluralizes the inbound-pod/request counts in InvariantViolation's
// message; the warehouse has no locale concept of its own, so English is
// the fixed choice.
var dumpPrinter = message.NewPrinter(language.English)

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}

// AssignmentRecord is the per-assignment statistic spec §6 requires
// ("per-assignment best-score vectors, single-pod vs pod-set counts").
type AssignmentRecord struct {
	Station   *model.Station
	Bot       *model.Bot
	Pod       *model.Pod
	Scores    []float64
	PodSet    bool
	Strategy  string
}

// Assigned builds the Event for one completed pod-selection assignment.
func Assigned(rec AssignmentRecord) Event {
	mode := "single_pod"
	if rec.PodSet {
		mode = "pod_set"
	}
	return Event{
		InvolvedObject: rec.Bot.ID,
		Type:           Info,
		Reason:         "PodAssigned",
		Message:        fmt.Sprintf("%s assigned pod %s for station %s (%s, strategy %s)", rec.Bot.ID, rec.Pod.ID, rec.Station.ID, mode, rec.Strategy),
		DedupeValues:   []string{rec.Bot.ID, rec.Pod.ID, rec.Station.ID},
	}
}

// PlannerTimeout reports an agent that never found a path before the
// overall planning timeout (spec §7: "escalates to caller on overall
// timeout").
func PlannerTimeout(agentID string) Event {
	return Event{
		InvolvedObject: agentID,
		Type:           Warning,
		Reason:         "PlannerTimeout",
		Message:        fmt.Sprintf("agent %s exceeded the overall planning timeout; using best known path", agentID),
		DedupeValues:   []string{agentID},
	}
}

// DiagnosticDump is the offending-state snapshot spec §7 requires on an
// invariant violation: "a diagnostic dump of the offending order, inbound
// pods, and request set."
type DiagnosticDump struct {
	Invariant   string
	Order       *model.Order
	InboundPods []*model.Pod
	Requests    []*model.ExtractRequest
}

// InvariantViolation reports an aborted tick (spec §7: "invariant
// violations abort the current tick and signal the observer"). Never
// deduped — every violation is distinct enough to warrant its own
// diagnostic.
func InvariantViolation(dump DiagnosticDump) Event {
	orderID := "<nil>"
	if dump.Order != nil {
		orderID = dump.Order.ID
	}
	return Event{
		InvolvedObject: orderID,
		Type:           Warning,
		Reason:         "InvariantViolation",
		Message: dumpPrinter.Sprintf("invariant %q violated for order %s: %d inbound %s, %d %s",
			dump.Invariant, orderID, len(dump.InboundPods), plural(len(dump.InboundPods), "pod", "pods"),
			len(dump.Requests), plural(len(dump.Requests), "request", "requests")),
	}
}
