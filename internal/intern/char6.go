// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package intern

import "strings"

// maxInlined is the number of sextets that fit next to the sign bit.
const maxInlined = 32 / 6

// pad is the sextet used to fill unused positions. It decodes to '.', which
// is why strings ending in '.' cannot be inlined.
const pad = 077

var (
	// Unlike LLVM, '_' and '.' are swapped so that '.' is 077.
	char6ToByte = []byte("0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_.")
	byteToChar6 = func() (out [256]byte) {
		for i := range out {
			out[i] = 0xff
		}
		for j, b := range char6ToByte {
			out[b] = byte(j)
		}
		return out
	}()
)

// encodeChar6 tries to pack s into an ID.
func encodeChar6(s string) (ID, bool) {
	if s == "" {
		return 0, true
	}
	if len(s) > maxInlined || strings.HasSuffix(s, ".") {
		return 0, false
	}

	// Start from all ones: the sign bit ends up set, and positions past the
	// end of s are left holding pad.
	id := ID(-1)
	for i := len(s) - 1; i >= 0; i-- {
		sextet := byteToChar6[s[i]]
		if sextet == 0xff {
			return 0, false
		}
		id = id<<6 | ID(sextet)
	}
	return id, true
}

// decodeChar6 unpacks an ID produced by encodeChar6.
func decodeChar6(id ID) string {
	var buf [maxInlined]byte
	n := 0
	for i := range buf {
		sextet := id & 077
		id >>= 6
		buf[i] = char6ToByte[sextet]
		if sextet != pad {
			n = i + 1
		}
	}
	return string(buf[:n])
}
