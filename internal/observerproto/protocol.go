package observerproto

// Version is the observer stream protocol version.
const Version = "0.1"

// Client -> Server. First message on the observer WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// BoxState is one box placement as shipped to observers. Table reports the
// fixed support surfaces so renderers can skip edge styling for them.
type BoxState struct {
	Label string     `json:"label"`
	Min   [3]float64 `json:"min"`
	Max   [3]float64 `json:"max"`
	Table bool       `json:"table,omitempty"`
}

// Server -> Client. SCENE_INIT carries the full scene when a run loads it;
// SCENE_UPDATE carries the full scene after a relocation was applied.
type SceneMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Boxes           []BoxState `json:"boxes"`
}

// Server -> Client. Announces the instruction about to execute, with its
// original explanatory lines when the plan carries them.
type StepMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Index           int      `json:"index"`
	Instruction     string   `json:"instruction"`
	Original        []string `json:"original,omitempty"`
}

// Server -> Client. Emitted once per evaluated plan.
type RunMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Method          string   `json:"method"`
	Run             string   `json:"run"`
	Domain          string   `json:"domain"`
	Goal            string   `json:"goal,omitempty"`
	Steps           int      `json:"steps"`
	Errors          []string `json:"errors"`
}

const (
	TypeSubscribe   = "SUBSCRIBE"
	TypeSceneInit   = "SCENE_INIT"
	TypeSceneUpdate = "SCENE_UPDATE"
	TypeStep        = "STEP"
	TypeRunStart    = "RUN_START"
	TypeRunResult   = "RUN_RESULT"
)
