package env

// Outcome is the result of playing one action: the realized next state,
// the immediate reward and penalty, and whether the episode ended.
type Outcome[S any] struct {
	State   S
	Reward  float64
	Penalty float64
	Done    bool
}

// Environment is a sequential decision process that emits a reward and a
// penalty per step. Checkpointing must cover every piece of state that
// influences subsequent outcomes, including any internal randomness the
// environment wants restored.
type Environment[S comparable, A comparable] interface {
	Name() string

	NumActions() int
	PossibleActions() []A
	GetAction(i int) A

	CurrentState() S
	IsOver() bool

	PlayAction(a A) Outcome[S]

	MakeCheckpoint()
	RestoreCheckpoint()

	Reset()
}
