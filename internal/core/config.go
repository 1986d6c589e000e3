package core

// RuntimeConfig is passed to a game when a session starts.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Platform ticks per second
	Seed     int64 // RNG seed for the deck shuffle (0 = time-based)
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
	}
}

// GameState is the status a game reports to the platform after each step.
type GameState struct {
	Score    int
	GameOver bool
	Paused   bool
}

// StepResult is returned by a game's Step.
type StepResult struct {
	State GameState
}
