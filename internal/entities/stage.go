package entities

// Stage is one row of the stages table
type Stage struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	BGM     string  `yaml:"bgm"`
	Gravity float64 `yaml:"gravity"`

	Ground      *HeightField `yaml:"ground,omitempty"`
	PlayerSpawn Vec3         `yaml:"playerSpawn"`

	Enemies []Placement     `yaml:"enemies"`
	NPCs    []Placement     `yaml:"npcs"`
	Items   []ItemPlacement `yaml:"items"`
	Exits   []Exit          `yaml:"exits"`
}

// Placement puts a character row at a position
type Placement struct {
	Character string  `yaml:"character"`
	Position  Vec3    `yaml:"position"`
	Yaw       float64 `yaml:"yaw,omitempty"`
}

// ItemPlacement puts a pickup on the ground
type ItemPlacement struct {
	Item     string `yaml:"item"`
	Position Vec3   `yaml:"position"`
	Amount   int    `yaml:"amount,omitempty"`
}

// Exit moves the player to NextStage when entered
type Exit struct {
	Position             Vec3    `yaml:"position"`
	Radius               float64 `yaml:"radius"`
	NextStage            string  `yaml:"nextStage"`
	RequiresBossDefeated bool    `yaml:"requiresBossDefeated,omitempty"`
}

// HeightField is a regular grid of ground heights. Sample (i, j) sits at
// Origin + (i*CellSize, j*CellSize) and is stored at Heights[j*Width+i].
type HeightField struct {
	Origin   Vec3      `yaml:"origin"`
	CellSize float64   `yaml:"cellSize"`
	Width    int       `yaml:"width"`
	Depth    int       `yaml:"depth"`
	Heights  []float64 `yaml:"heights"`
}

// Sequence is a scripted run of text, camera and audio steps
type Sequence struct {
	ID       string         `yaml:"id"`
	Duration float64        `yaml:"duration"`
	BGM      string         `yaml:"bgm"`
	Steps    []SequenceStep `yaml:"steps"`
}

// SequenceStep fires once when the sequence clock reaches At
type SequenceStep struct {
	At     float64     `yaml:"at"`
	Text   string      `yaml:"text,omitempty"`
	Camera *CameraShot `yaml:"camera,omitempty"`
	Audio  string      `yaml:"audio,omitempty"`
}

// CameraShot is a fixed camera placement
type CameraShot struct {
	Position Vec3 `yaml:"position" json:"position"`
	LookAt   Vec3 `yaml:"lookAt" json:"lookAt"`
}

// Settings ties the tables together for a new game
type Settings struct {
	PlayerCharacter string  `yaml:"playerCharacter"`
	StartStage      string  `yaml:"startStage"`
	OpeningSequence string  `yaml:"openingSequence"`
	EndingSequence  string  `yaml:"endingSequence"`
	TitleBGM        string  `yaml:"titleBgm"`
	SplashDuration  float64 `yaml:"splashDuration"`
}
