package game

// State is the top-level game state
type State string

// Game states
const (
	StateSplash  State = "SPLASH_SCREEN"
	StateOpening State = "OPENING"
	StateTitle   State = "TITLE"
	StateLoading State = "LOADING"
	StatePlaying State = "PLAYING"
	StatePaused  State = "PAUSED"
	StateEnding  State = "ENDING"
)

// Result says how a run ended
type Result string

// Run results
const (
	ResultCompleted Result = "completed"
	ResultDefeated  Result = "defeated"
)

// Outcome summarizes a finished run
type Outcome struct {
	Result          Result  `json:"result"`
	PlayerName      string  `json:"playerName"`
	Stage           string  `json:"stage"`
	Level           int     `json:"level"`
	Experience      int     `json:"experience"`
	EnemiesDefeated int     `json:"enemiesDefeated"`
	PlayTime        float64 `json:"playTime"`
}

// Tuning shared by the state machine and the player update
const (
	DefaultSplashDuration = 2.5
	// DeathReturnDelay is the wait between player death and TITLE
	DeathReturnDelay = 3.0
	// EndingDelay is the ending gate countdown after the boss dies
	EndingDelay          = 1.0
	LockOnRange          = 20.0
	InteractRange        = 3.0
	PickupRange          = 1.5
	StatusPointsPerLevel = 3
	DashMultiplier       = 1.8
	RollMultiplier       = 2.5

	VitalityHP       = 10
	EnduranceStamina = 10.0
	StrengthAttack   = 0.05
	MindFP           = 5.0

	// feet within this distance of the ground stick to it
	groundSnap = 0.1
)
