package condition_test

import (
	"testing"

	"github.com/aretw0/dialoguetree/pkg/condition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticBool(v bool) condition.Condition {
	return &condition.Bool{Name: "flag", Query: condition.BoolFunc(func() bool { return v }), Value: true}
}

func TestInt_Comparisons(t *testing.T) {
	gold := 10
	query := condition.IntFunc(func() int { return gold })

	tests := []struct {
		op    condition.Comparison
		value int
		want  bool
	}{
		{condition.Equal, 10, true},
		{condition.NotEqual, 10, false},
		{condition.Greater, 9, true},
		{condition.Less, 10, false},
		{condition.GreaterOrEqual, 10, true},
		{condition.LessOrEqual, 9, false},
		{"", 10, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			c := &condition.Int{Name: "gold", Query: query, Op: tt.op, Value: tt.value}
			assert.Equal(t, tt.want, c.IsMet())
		})
	}
}

func TestFloat_ReadsLiveState(t *testing.T) {
	health := 0.5
	c := &condition.Float{Name: "health", Query: condition.FloatFunc(func() float64 { return health }), Op: condition.Less, Value: 0.25}

	assert.False(t, c.IsMet())
	health = 0.1
	assert.True(t, c.IsMet(), "condition must re-evaluate the query on every call")
	assert.Equal(t, "health < 0.25", c.String())
}

func TestBool_OnlyEqualityIsValid(t *testing.T) {
	q := condition.BoolFunc(func() bool { return true })

	assert.True(t, (&condition.Bool{Query: q, Op: condition.NotEqual, Value: false}).IsMet())
	invalid := &condition.Bool{Query: q, Op: condition.Greater, Value: true}
	assert.False(t, invalid.IsValidCondition())
	assert.False(t, invalid.IsMet())
}

func TestCondition_Validity(t *testing.T) {
	var nilFunc condition.IntFunc

	assert.False(t, (&condition.Int{}).IsValidCondition(), "missing query")
	assert.False(t, (&condition.Int{Query: nilFunc}).IsValidCondition(), "nil query func")
	assert.False(t, (&condition.Int{Query: condition.IntFunc(func() int { return 0 }), Op: "~"}).IsValidCondition())
	assert.False(t, (&condition.Int{}).IsMet(), "invalid conditions are never met")
}

func TestParseComparison(t *testing.T) {
	for in, want := range map[string]condition.Comparison{
		"":     condition.Equal,
		"=":    condition.Equal,
		"gte":  condition.GreaterOrEqual,
		" LT ": condition.Less,
		"!=":   condition.NotEqual,
	} {
		got, err := condition.ParseComparison(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := condition.ParseComparison("between")
	assert.Error(t, err)
}

func TestLock_Modes(t *testing.T) {
	inputs := []condition.Condition{staticBool(false), staticBool(true)}

	anyLock := &condition.Lock{Mode: condition.ModeAny, Conditions: inputs}
	allLock := &condition.Lock{Mode: condition.ModeAll, Conditions: inputs}

	assert.True(t, anyLock.IsUnlocked(), "ANY with [false, true] is unlocked")
	assert.False(t, allLock.IsUnlocked(), "ALL with [false, true] is locked")
	assert.Equal(t, "flag == true OR flag == true", anyLock.String())
}

func TestLock_VacuouslyUnlocked(t *testing.T) {
	assert.True(t, (&condition.Lock{Mode: condition.ModeAll}).IsUnlocked())
	assert.True(t, (&condition.Lock{Mode: condition.ModeAny}).IsUnlocked())

	var nilLock *condition.Lock
	assert.True(t, nilLock.IsUnlocked())
	assert.True(t, nilLock.IsValid())
}

func TestLock_IsValid(t *testing.T) {
	l := &condition.Lock{Conditions: []condition.Condition{staticBool(true), &condition.Int{}}}
	assert.False(t, l.IsValid())
}

func TestParseMode(t *testing.T) {
	m, err := condition.ParseMode("ANY")
	require.NoError(t, err)
	assert.Equal(t, condition.ModeAny, m)

	m, err = condition.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, condition.ModeAll, m)

	_, err = condition.ParseMode("most")
	assert.Error(t, err)
}
