package store

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/timeslice/pkg/errors"
)

// Quadrant identifies one cell of the Eisenhower matrix.
type Quadrant string

const (
	Q1 Quadrant = "Q1" // urgent and important
	Q2 Quadrant = "Q2" // important, not urgent
	Q3 Quadrant = "Q3" // urgent, not important
	Q4 Quadrant = "Q4" // neither
)

// Quadrants lists the quadrants in display order.
var Quadrants = []Quadrant{Q1, Q2, Q3, Q4}

var quadrantNames = map[Quadrant]string{
	Q1: "Urgent & important",
	Q2: "Important, not urgent",
	Q3: "Urgent, not important",
	Q4: "Neither urgent nor important",
}

// Name returns the human-readable title of q.
func (q Quadrant) Name() string { return quadrantNames[q] }

// Valid reports whether q is one of Q1..Q4.
func (q Quadrant) Valid() bool {
	_, ok := quadrantNames[q]
	return ok
}

// ParseQuadrant accepts "Q2", "q2" or "2".
func ParseQuadrant(s string) (Quadrant, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "Q"))
	if err != nil {
		return "", errors.New(errors.ErrCodeInvalidQuadrant, "invalid quadrant %q (must be Q1-Q4)", s)
	}
	if err := errors.ValidateQuadrant(n); err != nil {
		return "", err
	}
	return Quadrant("Q" + strconv.Itoa(n)), nil
}

// Task is a to-do item filed under a quadrant.
type Task struct {
	ID        string    `json:"id" bson:"_id"`
	Text      string    `json:"text" bson:"text"`
	Quadrant  Quadrant  `json:"quadrant" bson:"quadrant"`
	Completed bool      `json:"completed" bson:"completed"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// legacyTimeLayout matches timestamps written without a zone offset.
const legacyTimeLayout = "2006-01-02T15:04:05.999999999"

// UnmarshalJSON accepts RFC 3339 timestamps as well as zone-less ones,
// which are read in local time.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var raw struct {
		plain
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task(raw.plain)
	if raw.CreatedAt == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw.CreatedAt)
	if err != nil {
		ts, err = time.ParseInLocation(legacyTimeLayout, raw.CreatedAt, time.Local)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "task %s: bad created_at %q", t.ID, raw.CreatedAt)
		}
	}
	t.CreatedAt = ts
	return nil
}

// NewTask validates its input and returns a fresh, incomplete task.
func NewTask(text string, q Quadrant, now time.Time) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, errors.New(errors.ErrCodeInvalidInput, "task text cannot be empty")
	}
	if !q.Valid() {
		return Task{}, errors.New(errors.ErrCodeInvalidQuadrant, "invalid quadrant %q (must be Q1-Q4)", q)
	}
	return Task{
		ID:        uuid.NewString(),
		Text:      text,
		Quadrant:  q,
		CreatedAt: now,
	}, nil
}

// FilterTasks returns the tasks in q, or all of them when q is empty.
func FilterTasks(tasks []Task, q Quadrant) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if q == "" || t.Quadrant == q {
			out = append(out, t)
		}
	}
	return out
}

// CheckQuadrant validates an optional quadrant filter.
func CheckQuadrant(q Quadrant) error {
	if q != "" && !q.Valid() {
		return errors.New(errors.ErrCodeInvalidQuadrant, "invalid quadrant %q (must be Q1-Q4)", q)
	}
	return nil
}
