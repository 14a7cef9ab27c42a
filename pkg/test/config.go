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

package test

import "github.com/fleetsim/warehouse-engine/pkg/config"

// Config returns config.DefaultConfig(), merged with overrides[0] when
// given (the same Defaulted-over-DefaultConfig merge the production
// wiring uses), for suites that only care about a handful of fields.
func Config(overrides ...config.Config) config.Config {
	cfg := config.DefaultConfig()
	if len(overrides) == 0 {
		return cfg
	}
	merged, err := config.Defaulted(overrides[0])
	if err != nil {
		panic(err)
	}
	return merged
}
