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

package planner

import "fmt"

// noPathError signals a per-agent search failure within the current
// window; recoverable by priority escalation and retry (spec §7).
type noPathError struct{ agentID string }

func (e *noPathError) Error() string { return fmt.Sprintf("planner: no path found for agent %s within window", e.agentID) }

func errNoPath(agentID string) error { return &noPathError{agentID: agentID} }

// timeoutError signals the overall find_paths wall-clock budget was
// exceeded before every agent could be planned.
type timeoutError struct{ agentID string }

func (e *timeoutError) Error() string {
	return fmt.Sprintf("planner: overall time budget exceeded before agent %s was planned", e.agentID)
}

func errTimeout(agentID string) error { return &timeoutError{agentID: agentID} }
