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

package syscalls

import (
	"errors"

	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/kernel"
	"redk.dev/redk/pkg/log"
)

// maxTones bounds the length of a melody.
const maxTones = 1024

// toneChunk is the number of tones copied from the caller at a time.
const toneChunk = 32

// PlaySound implements syscall PLAYSOUND. The melody is copied before
// playback starts, so the caller may reuse its memory. Melodies longer than
// maxTones are truncated, and a copy fault ends the melody at the last tone
// copied.
func PlaySound(k *kernel.Kernel, args kernel.SyscallArguments) (uint32, error) {
	addr := args[0].Pointer()
	repeat := args[1].Uint() != 0

	tones, err := copyTonesIn(k, addr)
	if err != nil {
		log.Debugf("playsound: melody at %v cut short after %d tones: %v", addr, len(tones), err)
	}
	k.Tones().Play(tones, repeat, k.Timekeeper().Uptime())
	return 0, nil
}

// errTooManyTones is returned when no terminator is found within maxTones.
var errTooManyTones = errors.New("melody has no terminator")

func copyTonesIn(k *kernel.Kernel, addr hostarch.Addr) ([]kernel.Tone, error) {
	var (
		tones []kernel.Tone
		buf   [toneChunk * kernel.ToneSize]byte
	)
	for len(tones) < maxTones {
		want := min(maxTones-len(tones), toneChunk)
		n, err := k.Memory().CopyIn(addr, buf[:want*kernel.ToneSize])
		for i := 0; i+kernel.ToneSize <= n; i += kernel.ToneSize {
			t := kernel.DecodeTone(buf[i:])
			if t.Frequency == 0 {
				return tones, nil
			}
			tones = append(tones, t)
		}
		if err != nil {
			return tones, err
		}
		next, ok := addr.AddLength(uint32(n))
		if !ok {
			return tones, errTooManyTones
		}
		addr = next
	}
	return tones, errTooManyTones
}
