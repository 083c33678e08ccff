// Copyright 2024 The Trace Core Authors
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
//
// SPDX-License-Identifier: Apache-2.0

package altneu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/trace-core/altneu"
	"github.com/cockroachdb/trace-core/lattice"
)

func TestOrderingAtEqualTime(t *testing.T) {
	at5Alt := altneu.EnterAlt(lattice.New(5, 0))
	at5Neu := altneu.EnterNeu(lattice.New(5, 0))

	require.True(t, at5Alt.LessEqual(at5Neu))
	require.False(t, at5Neu.LessEqual(at5Alt))
	require.True(t, at5Alt.LessEqual(at5Alt))
	require.True(t, at5Neu.LessEqual(at5Neu))
}

func TestRoleIrrelevantWhenTimeDiffers(t *testing.T) {
	earlyNeu := altneu.EnterNeu(lattice.New(3, 0))
	lateAlt := altneu.EnterAlt(lattice.New(7, 0))

	require.True(t, earlyNeu.LessEqual(lateAlt))
	require.False(t, lateAlt.LessEqual(earlyNeu))
}

func TestJoinMeetLattice(t *testing.T) {
	a := altneu.EnterAlt(lattice.New(5, 0))
	b := altneu.EnterNeu(lattice.New(5, 0))

	join := a.Join(b)
	require.Equal(t, lattice.New(5, 0), join.Time)
	require.Equal(t, altneu.Neu, join.Role)

	meet := a.Meet(b)
	require.Equal(t, lattice.New(5, 0), meet.Time)
	require.Equal(t, altneu.Alt, meet.Role)
}

func TestJoinAcrossDifferentTimes(t *testing.T) {
	early := altneu.EnterNeu(lattice.New(3, 0))
	late := altneu.EnterAlt(lattice.New(7, 0))

	join := early.Join(late)
	require.Equal(t, lattice.New(7, 0), join.Time)
	require.Equal(t, altneu.Alt, join.Role)

	meet := early.Meet(late)
	require.Equal(t, lattice.New(3, 0), meet.Time)
	require.Equal(t, altneu.Neu, meet.Role)
}

func TestLatticeLawsHoldAcrossSamples(t *testing.T) {
	samples := []altneu.AltNeu[lattice.Instant]{
		altneu.EnterAlt(lattice.New(1, 0)),
		altneu.EnterNeu(lattice.New(1, 0)),
		altneu.EnterAlt(lattice.New(2, 0)),
		altneu.EnterNeu(lattice.New(2, 0)),
		altneu.EnterAlt(lattice.New(3, 5)),
	}
	for _, a := range samples {
		for _, b := range samples {
			require.True(t, lattice.Equal(a.Join(b), b.Join(a)), "join must commute")
			require.True(t, a.LessEqual(a.Join(b)), "a <= a join b")
			require.True(t, b.LessEqual(a.Join(b)), "b <= a join b")
			require.True(t, a.Meet(b).LessEqual(a), "a meet b <= a")
			require.True(t, a.Meet(b).LessEqual(b), "a meet b <= b")
		}
	}
}

func TestCompareIsConsistentWithLessEqual(t *testing.T) {
	a := altneu.EnterAlt(lattice.New(5, 0))
	b := altneu.EnterNeu(lattice.New(5, 0))
	require.Negative(t, a.Compare(b))
	require.True(t, a.LessEqual(b))
}
