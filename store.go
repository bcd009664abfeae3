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

package syntree

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"math"
	"slices"
)

// Stats is a snapshot of an arena's storage.
type Stats struct {
	// Slots allocated for each kind of value.
	Tokens, Nodes, Mutable int
	// Distinct strings in the token text table.
	Texts int

	// Constructor calls that returned an existing token or node rather than
	// allocating a new one.
	TokenHits, NodeHits int
}

// Stats returns a snapshot of this arena's storage.
func (a *Arena[P]) Stats() Stats {
	a.rlock()
	defer a.sync.RUnlock()
	stats := a.stats
	stats.Texts = a.texts.Len()
	return stats
}

// token interns a token.
func (a *Arena[P]) token(kind Kind, text string) Handle {
	if uint64(len(text)) > math.MaxUint32 {
		panic("syntree: token text is too long")
	}

	a.lock()
	defer a.sync.Unlock()

	id := a.texts.Intern(text)
	key := tokenKey{kind, id}
	if h, ok := a.tokens[key]; ok {
		a.stats.TokenHits++
		return h
	}

	h := a.alloc(slot[P]{
		tag:    tagToken,
		kind:   kind,
		textID: id,
		text:   a.texts.Value(id),
		width:  uint32(len(text)),
		size:   1,
	})
	a.tokens[key] = h
	a.stats.Tokens++
	return h
}

// node interns a green internal node. Every child must be a token or a green
// node.
func (a *Arena[P]) node(kind Kind, children []Handle) Handle {
	hash := a.hash(kind, children)

	a.lock()
	defer a.sync.Unlock()

	for _, h := range a.nodes[hash] {
		s := a.at(h)
		if s.kind == kind && slices.Equal(s.children, children) {
			a.stats.NodeHits++
			return h
		}
	}

	width, size := uint64(0), uint64(1)
	for _, child := range children {
		c := a.at(child)
		if c.tag == tagMutable {
			panic(fmt.Sprintf("syntree: mutable node %d cannot be the child of a green node", child))
		}
		width += uint64(c.width)
		size += uint64(c.size)
	}
	if width > math.MaxUint32 {
		panic("syntree: tree text exceeds 4 GiB")
	}
	if size > math.MaxUint32 {
		panic("syntree: tree has too many nodes")
	}

	h := a.alloc(slot[P]{
		tag:      tagGreen,
		kind:     kind,
		width:    uint32(width),
		size:     uint32(size),
		children: slices.Clone(children),
	})
	a.nodes[hash] = append(a.nodes[hash], h)
	a.stats.Nodes++
	return h
}

// hash computes the structural hash of a green node. Children are hashed by
// handle, which is sound because their own contents were interned first.
func (a *Arena[P]) hash(kind Kind, children []Handle) uint64 {
	if a.config.nodeHash != nil {
		return a.config.nodeHash(kind, children)
	}

	var h maphash.Hash
	h.SetSeed(a.seed)

	var buf [4]byte
	binary.LittleEndian.PutUint16(buf[:2], uint16(kind))
	_, _ = h.Write(buf[:2])
	for _, child := range children {
		binary.LittleEndian.PutUint32(buf[:], uint32(child))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
