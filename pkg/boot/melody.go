// Copyright 2026 The redk Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package boot

import (
	"redk.dev/redk/pkg/kernel"
)

// StartupMelody returns the melody played once devices are up.
func StartupMelody() []kernel.Tone {
	return []kernel.Tone{
		{Frequency: 659, Duration: 400},
		{Frequency: 494, Duration: 400},
		{Frequency: 440, Duration: 500},
		{Frequency: 659, Duration: 330},
		{Frequency: 494, Duration: 500},
	}
}
