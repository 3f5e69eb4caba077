package condition

// IntQuery reads an integer from game state.
type IntQuery interface {
	Execute() int
	IsValidQuery() bool
}

// FloatQuery reads a float from game state.
type FloatQuery interface {
	Execute() float64
	IsValidQuery() bool
}

// BoolQuery reads a flag from game state.
type BoolQuery interface {
	Execute() bool
	IsValidQuery() bool
}

// IntFunc adapts a function to IntQuery.
type IntFunc func() int

func (f IntFunc) Execute() int { return f() }
func (f IntFunc) IsValidQuery() bool { return f != nil }

// FloatFunc adapts a function to FloatQuery.
type FloatFunc func() float64

func (f FloatFunc) Execute() float64 { return f() }
func (f FloatFunc) IsValidQuery() bool { return f != nil }

// BoolFunc adapts a function to BoolQuery.
type BoolFunc func() bool

func (f BoolFunc) Execute() bool { return f() }
func (f BoolFunc) IsValidQuery() bool { return f != nil }
