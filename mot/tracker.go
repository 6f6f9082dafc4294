package mot

const (
	// DefaultMaxDistance is matching radius in pixels
	DefaultMaxDistance = 80.0
	// DefaultMaxHistoryLength is number of consecutive unmatched frames tolerated before eviction
	DefaultMaxHistoryLength = 10
	// DefaultNextObjectID is the first identifier assigned
	DefaultNextObjectID = 1
)

// TrackerConfig holds tracking parameters
type TrackerConfig struct {
	// Detection matches a track only when distance is strictly less than MaxDistance
	MaxDistance float64
	// Track is evicted once its age exceeds MaxHistoryLength
	MaxHistoryLength int
	// Max number of points kept in track histories. Zero means unbounded
	MaxTrackLen int
	// Matching strategy. Nil means GreedyMatcher
	Matcher Matcher
}

// DefaultTrackerConfig returns default tracking parameters
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MaxDistance:      DefaultMaxDistance,
		MaxHistoryLength: DefaultMaxHistoryLength,
		MaxTrackLen:      0,
		Matcher:          GreedyMatcher{},
	}
}

// Update produces new tracking state from detections of the current frame and the prior state.
// It returns new state and the next free identifier. Prior state is left untouched.
//
// Every prior object is aged by one frame first and dropped once its age exceeds
// MaxHistoryLength. Survivors form the candidate pool; detections are then matched to
// the pool by the configured Matcher. Matched objects take detection's center and reset
// their age, unmatched detections become new objects with consecutive identifiers
// in the order of detections. With the default GreedyMatcher a new object joins the pool
// at once and may be matched by a later detection of the same frame.
func Update(detections []Detection, prior State, nextID int, cfg TrackerConfig) (State, int) {
	matcher := cfg.Matcher
	if matcher == nil {
		matcher = GreedyMatcher{}
	}

	updated := make(State, len(prior)+len(detections))
	candidates := make([]*TrackedObject, 0, len(prior))
	// Update the age of existing objects
	for _, objectID := range prior.IDs() {
		object := prior[objectID].Clone()
		object.Age++
		if object.Age > cfg.MaxHistoryLength {
			continue
		}
		updated[objectID] = object
		candidates = append(candidates, object)
	}

	assignment := matcher.Match(detections, candidates, cfg.MaxDistance)

	// Tracks created in this frame, addressed by the matcher past the end of candidates
	created := make([]*TrackedObject, 0, len(detections))
	// Prevent double update even if custom matcher is not careful
	reserved := make([]bool, len(candidates), len(candidates)+len(detections))
	for i, detection := range detections {
		trackIdx := -1
		if i < len(assignment) {
			trackIdx = assignment[i]
		}
		if trackIdx >= 0 && trackIdx < len(candidates)+len(created) && !reserved[trackIdx] {
			if trackIdx < len(candidates) {
				candidates[trackIdx].update(detection, cfg.MaxTrackLen)
			} else {
				created[trackIdx-len(candidates)].update(detection, cfg.MaxTrackLen)
			}
			reserved[trackIdx] = true
			continue
		}
		// Otherwise register object as a new one
		object := newTrackedObject(nextID, detection)
		updated[nextID] = object
		created = append(created, object)
		reserved = append(reserved, false)
		nextID++
	}
	return updated, nextID
}

// Tracker owns tracking state and identifier counter across frames.
// It is not safe for concurrent use.
type Tracker struct {
	// Main storage
	Objects State
	nextID  int
	config  TrackerConfig
}

// NewTrackerDefault creates default instance of Tracker
func NewTrackerDefault() *Tracker {
	return NewTracker(DefaultTrackerConfig(), DefaultNextObjectID)
}

// NewTracker creates new instance of Tracker. Identifiers start from nextID
func NewTracker(config TrackerConfig, nextID int) *Tracker {
	if config.Matcher == nil {
		config.Matcher = GreedyMatcher{}
	}
	return &Tracker{
		Objects: make(State),
		nextID:  nextID,
		config:  config,
	}
}

// MatchObjects processes detections of a single frame
func (tracker *Tracker) MatchObjects(detections []Detection) {
	tracker.Objects, tracker.nextID = Update(detections, tracker.Objects, tracker.nextID, tracker.config)
}

// NextID returns identifier which will be assigned to the next new object
func (tracker *Tracker) NextID() int {
	return tracker.nextID
}

// Config returns tracker's configuration
func (tracker *Tracker) Config() TrackerConfig {
	return tracker.config
}

// Snapshot returns deep copy of the current state
func (tracker *Tracker) Snapshot() State {
	return tracker.Objects.Clone()
}

// Len returns number of live objects
func (tracker *Tracker) Len() int {
	return len(tracker.Objects)
}
