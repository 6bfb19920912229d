package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tavern/internal/game/dice"
)

func TestParse_Forms(t *testing.T) {
	cases := []struct {
		in   string
		want dice.Expression
	}{
		{"d20", dice.Expression{Raw: "d20", Count: 1, Sides: 20}},
		{"2d6", dice.Expression{Raw: "2d6", Count: 2, Sides: 6}},
		{"2d6+3", dice.Expression{Raw: "2d6+3", Count: 2, Sides: 6, Modifier: 3}},
		{"4d8-2", dice.Expression{Raw: "4d8-2", Count: 4, Sides: 8, Modifier: -2}},
		{"4d6kh3", dice.Expression{Raw: "4d6kh3", Count: 4, Sides: 6, KeepHighest: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := dice.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "20", "0d6", "2d1", "4d6kh4", "2d6+", "xd6"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestRoll_KeepHighest(t *testing.T) {
	res := dice.Roll(dice.MustParse("4d6kh3"), seq(2, 6, 1, 5))
	assert.Equal(t, []int{6, 5, 2}, res.Dice)
	assert.Equal(t, 13, res.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
	assert.Panics(t, func() { _ = dice.RollResult{}.String() })
}

func TestRollExpr_Property(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		mod := rapid.IntRange(-5, 5).Draw(rt, "mod")
		expr := fmt.Sprintf("%dd%d%+d", count, sides, mod)

		res, err := dice.RollExpr(expr, src)
		require.NoError(rt, err)
		assert.Len(rt, res.Dice, count)
		assert.GreaterOrEqual(rt, res.Total(), count+mod)
		assert.LessOrEqual(rt, res.Total(), count*sides+mod)
		assert.True(rt, strings.HasPrefix(res.String(), expr))
	})
}
