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

package config_test

import (
	"testing"

	"github.com/fleetsim/warehouse-engine/pkg/config"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := config.DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v; want nil", err)
	}
}

func TestDefaultedFillsZeroFieldsOnly(t *testing.T) {
	merged, err := config.Defaulted(config.Config{PodSelection: config.FullyDemand})
	if err != nil {
		t.Fatalf("Defaulted: %v", err)
	}
	if merged.PodSelection != config.FullyDemand {
		t.Fatalf("merged.PodSelection = %v; want FullyDemand (explicit override)", merged.PodSelection)
	}
	if merged.SA.CoolingRate != config.DefaultConfig().SA.CoolingRate {
		t.Fatalf("merged.SA.CoolingRate = %v; want default preserved", merged.SA.CoolingRate)
	}
}

func TestValidateRejectsUnknownPodSelectionMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PodSelection = config.PodSelectionMode(99)
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() with unrecognized pod selection mode: want error, got nil")
	}
}

func TestValidateRejectsHADODWithoutManager(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PodSelection = config.HADOD
	cfg.HADODOrderManager = false
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() with HADOD mode and no manager: want error, got nil")
	}

	cfg.HADODOrderManager = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() with HADOD mode and a manager: want nil, got %v", err)
	}
}

func TestValidateRejectsBadCoolingRate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SA.CoolingRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() with cooling_rate > 1: want error, got nil")
	}
}

func TestValidateRejectsInitTempBelowMinTemp(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SA.InitTemp = 0.001
	cfg.SA.MinTemp = 0.01
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() with init_temp < min_temp: want error, got nil")
	}
}

func TestToPlannerConfigCopiesFields(t *testing.T) {
	cfg := config.DefaultConfig()
	pc := cfg.Planning.ToPlannerConfig()
	if pc.LengthOfAWindow != cfg.Planning.LengthOfAWindow {
		t.Fatalf("ToPlannerConfig().LengthOfAWindow = %v; want %v", pc.LengthOfAWindow, cfg.Planning.LengthOfAWindow)
	}
	if pc.UseDeadlockHandler != cfg.Planning.UseDeadlockHandler {
		t.Fatalf("ToPlannerConfig().UseDeadlockHandler = %v; want %v", pc.UseDeadlockHandler, cfg.Planning.UseDeadlockHandler)
	}
}

func TestToSAConfigCarriesOverridesAndBaseDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SA.BruteForceMethod = true
	sc := cfg.SA.ToSAConfig()
	if !sc.BruteForce {
		t.Fatalf("ToSAConfig().BruteForce = false; want true (from BruteForceMethod)")
	}
	if sc.CoolingRate != cfg.SA.CoolingRate {
		t.Fatalf("ToSAConfig().CoolingRate = %v; want %v", sc.CoolingRate, cfg.SA.CoolingRate)
	}
}
