package layer

// Kind selects how a record sources its feature classes.
type Kind int

const (
	// FeatureService is a single sublayer of a feature or map service, addressed as <root>/<index>.
	FeatureService Kind = iota
	// ImageService is a map image service whose sublayer tree is read from the service root.
	ImageService
	// FileSource is a file read into memory through a provider driver.
	FileSource
)

var kindNames = map[Kind]string{
	FeatureService: "esriFeature",
	ImageService:   "esriImage",
	FileSource:     "file",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, ErrUnknownKind(s)
}

// State is the lifecycle state of a record.
type State int

const (
	New State = iota
	Loading
	Loaded
	Refresh
	Error
)

var stateNames = [...]string{"new", "loading", "loaded", "refresh", "error"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// LoadStatus is the load status an engine layer reports.
type LoadStatus string

const (
	StatusNotLoaded LoadStatus = "not-loaded"
	StatusLoading   LoadStatus = "loading"
	StatusLoaded    LoadStatus = "loaded"
	StatusFailed    LoadStatus = "failed"
)

// StateEvent is delivered to state change handlers.
type StateEvent struct {
	LayerID string `json:"layerId"`
	State   State  `json:"state"`
}
