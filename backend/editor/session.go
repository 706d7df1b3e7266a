package editor

import (
	"context"
	"math"
	"strconv"
	"strings"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"
)

type State string

const (
	StateIdle    State = "idle"
	StateEditing State = "editing"
	StateSaving  State = "saving"
	StateSaved   State = "saved"
	StateFailed  State = "failed"
)

// Draft is one editable lecture row.
type Draft struct {
	Key            LocalID               `json:"key"`
	ID             PersistedID           `json:"id,omitempty"`
	Title          string                `json:"title"`
	Type           models.LectureType    `json:"type"`
	Duration       int                   `json:"duration"`
	Link           string                `json:"link,omitempty"`
	Slides         string                `json:"slides,omitempty"`
	QAData         []models.QuizQuestion `json:"qa_data,omitempty"`
	MinScoreToPass *int                  `json:"min_score_to_pass,omitempty"`
}

// IsComplete is the gate for adding the next row and for saving.
func (d *Draft) IsComplete() bool {
	if strings.TrimSpace(d.Title) == "" || d.Duration < 0 {
		return false
	}
	if d.Type == models.LectureQuiz {
		return len(d.QAData) > 0 && d.MinScoreToPass != nil && *d.MinScoreToPass >= 0
	}
	return d.Type != ""
}

func (d *Draft) clone() Draft {
	out := *d
	if d.QAData != nil {
		out.QAData = append(make([]models.QuizQuestion, 0, len(d.QAData)), d.QAData...)
	}
	if d.MinScoreToPass != nil {
		v := *d.MinScoreToPass
		out.MinScoreToPass = &v
	}
	return out
}

type Field string

const (
	FieldTitle          Field = "title"
	FieldType           Field = "type"
	FieldDuration       Field = "duration"
	FieldLink           Field = "link"
	FieldSlides         Field = "slides"
	FieldMinScoreToPass Field = "min_score_to_pass"
)

// LectureDeleter removes a stored lecture immediately.
type LectureDeleter interface {
	DeleteLecture(ctx context.Context, id string) error
}

// Session is the editing state of one module: its title and an ordered list
// of drafts.
type Session struct {
	CourseID string
	ModuleID PersistedID
	Title    string
	Duration int

	state  State
	drafts []*Draft
}

// NewSession starts editing a new module with one empty video lecture.
func NewSession(courseID string) *Session {
	s := &Session{CourseID: courseID, state: StateEditing}
	s.drafts = []*Draft{emptyDraft()}
	return s
}

// LoadSession starts editing a stored module. Each lecture gets a fresh
// LocalID; its stored id is kept only until the next save.
func LoadSession(m *models.Module) *Session {
	s := &Session{CourseID: m.CourseID, ModuleID: PersistedID(m.ID), Title: m.Title, state: StateEditing}
	for _, l := range m.Lectures {
		d := &Draft{
			Key:      newLocalID(),
			ID:       PersistedID(l.ID),
			Title:    l.Title,
			Type:     l.Type,
			Duration: l.Duration,
			Link:     l.Link,
			Slides:   l.Slides,
		}
		if l.Type == models.LectureQuiz {
			d.QAData = append([]models.QuizQuestion{}, l.QAData...)
			min := 0
			if l.MinScoreToPass != nil {
				min = *l.MinScoreToPass
			}
			d.MinScoreToPass = &min
		}
		s.drafts = append(s.drafts, d)
	}
	if len(s.drafts) == 0 {
		s.drafts = []*Draft{emptyDraft()}
	}
	s.recomputeDuration()
	return s
}

func emptyDraft() *Draft {
	return &Draft{Key: newLocalID(), Type: models.LectureVideo}
}

func (s *Session) State() State { return s.state }

// Drafts returns copies of the rows in editor order.
func (s *Session) Drafts() []Draft {
	out := make([]Draft, len(s.drafts))
	for i, d := range s.drafts {
		out[i] = d.clone()
	}
	return out
}

func (s *Session) Draft(key LocalID) (Draft, bool) {
	_, d := s.find(key)
	if d == nil {
		return Draft{}, false
	}
	return d.clone(), true
}

func (s *Session) find(key LocalID) (int, *Draft) {
	for i, d := range s.drafts {
		if d.Key == key {
			return i, d
		}
	}
	return -1, nil
}

func (s *Session) editable() error {
	switch s.state {
	case StateEditing:
		return nil
	case StateFailed:
		s.state = StateEditing
		return nil
	case StateSaving:
		return utils.Conflict("Module is being saved")
	default:
		return utils.Conflict("Module editing session is closed")
	}
}

func (s *Session) SetTitle(title string) error {
	if err := s.editable(); err != nil {
		return err
	}
	s.Title = title
	return nil
}

// AddLecture appends an empty draft. The last draft must be complete first.
func (s *Session) AddLecture() (LocalID, error) {
	if err := s.editable(); err != nil {
		return "", err
	}
	if n := len(s.drafts); n > 0 && !s.drafts[n-1].IsComplete() {
		return "", utils.Validation("Complete lecture %d before adding another one", n)
	}
	if len(s.drafts) >= MaxChildren {
		return "", utils.Validation("A module holds at most %d lectures", MaxChildren)
	}
	d := emptyDraft()
	s.drafts = append(s.drafts, d)
	s.recomputeDuration()
	return d.Key, nil
}

// CanSetQuiz reports whether the draft may become a quiz: a module holds at
// most one quiz.
func (s *Session) CanSetQuiz(key LocalID) bool {
	for _, d := range s.drafts {
		if d.Key != key && d.Type == models.LectureQuiz {
			return false
		}
	}
	return true
}

// UpdateLecture sets one field of a draft. Changing the type to quiz resets
// the quiz payload and clears link and slides; changing it away from quiz
// drops the quiz payload.
func (s *Session) UpdateLecture(key LocalID, field Field, value interface{}) error {
	if err := s.editable(); err != nil {
		return err
	}
	_, d := s.find(key)
	if d == nil {
		return utils.NotFound("Lecture not found in module")
	}

	switch field {
	case FieldTitle:
		d.Title = toString(value)
	case FieldType:
		t := models.LectureType(toString(value))
		if !t.Valid() {
			return utils.Validation("Unknown lecture type %q", t)
		}
		if t == models.LectureQuiz && d.Type != models.LectureQuiz {
			if !s.CanSetQuiz(key) {
				return utils.Validation("A module can contain only one quiz")
			}
			zero := 0
			d.QAData = []models.QuizQuestion{}
			d.MinScoreToPass = &zero
			d.Link, d.Slides = "", ""
		}
		if t != models.LectureQuiz {
			d.QAData = nil
			d.MinScoreToPass = nil
		}
		d.Type = t
	case FieldDuration:
		d.Duration = toDuration(value)
	case FieldLink:
		if d.Type == models.LectureQuiz {
			return utils.Validation("Quiz lectures have no link")
		}
		d.Link = toString(value)
	case FieldSlides:
		if d.Type == models.LectureQuiz {
			return utils.Validation("Quiz lectures have no slides")
		}
		d.Slides = toString(value)
	case FieldMinScoreToPass:
		if d.Type != models.LectureQuiz {
			return utils.Validation("Only quiz lectures have a passing score")
		}
		min := toDuration(value)
		if min > len(d.QAData) {
			return utils.Validation("Passing score %d exceeds the %d questions of the quiz", min, len(d.QAData))
		}
		d.MinScoreToPass = &min
	default:
		return utils.Validation("Unknown lecture field %q", field)
	}

	s.recomputeDuration()
	return nil
}

// AddQuestion appends a question to a quiz draft. The previous question
// must be complete.
func (s *Session) AddQuestion(key LocalID, q models.QuizQuestion) error {
	if err := s.editable(); err != nil {
		return err
	}
	_, d := s.find(key)
	if d == nil {
		return utils.NotFound("Lecture not found in module")
	}
	if d.Type != models.LectureQuiz {
		return utils.Validation("Questions can only be added to a quiz")
	}
	if n := len(d.QAData); n > 0 && !d.QAData[n-1].Complete() {
		return utils.Validation("Complete question %d before adding another one", n)
	}
	d.QAData = append(d.QAData, q)
	return nil
}

// MoveLecture moves a draft to index, shifting the others.
func (s *Session) MoveLecture(key LocalID, index int) error {
	if err := s.editable(); err != nil {
		return err
	}
	from, d := s.find(key)
	if d == nil {
		return utils.NotFound("Lecture not found in module")
	}
	if index < 0 || index >= len(s.drafts) {
		return utils.Validation("Position %d is out of range", index+1)
	}
	rest := append(s.drafts[:from:from], s.drafts[from+1:]...)
	moved := make([]*Draft, 0, len(s.drafts))
	moved = append(moved, rest[:index]...)
	moved = append(moved, d)
	moved = append(moved, rest[index:]...)
	s.drafts = moved
	return nil
}

// DeleteLecture removes a draft. The last remaining draft cannot be
// deleted. A stored lecture is deleted from the store first and stays in the
// list if that fails.
func (s *Session) DeleteLecture(ctx context.Context, key LocalID, store LectureDeleter) error {
	if err := s.editable(); err != nil {
		return err
	}
	i, d := s.find(key)
	if d == nil {
		return utils.NotFound("Lecture not found in module")
	}
	if len(s.drafts) == 1 {
		return utils.Validation("A module must contain at least one lecture")
	}
	if d.ID.Persisted() {
		if store == nil {
			return utils.Server("Could not delete lecture", nil)
		}
		if err := store.DeleteLecture(ctx, string(d.ID)); err != nil {
			return err
		}
	}
	s.drafts = append(s.drafts[:i:i], s.drafts[i+1:]...)
	s.recomputeDuration()
	return nil
}

// Validate checks what a save requires: a title and only complete lectures.
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return utils.Validation("Module title is required")
	}
	if len(s.drafts) == 0 {
		return utils.Validation("A module must contain at least one lecture")
	}
	if len(s.drafts) > MaxChildren {
		return utils.Validation("A module holds at most %d lectures", MaxChildren)
	}
	for i, d := range s.drafts {
		if !d.IsComplete() {
			return utils.Validation("Lecture %d is incomplete", i+1)
		}
	}
	return nil
}

func (s *Session) recomputeDuration() {
	total := 0
	for _, d := range s.drafts {
		total += d.Duration
	}
	s.Duration = total
}

// lectures builds the rows to store under moduleID, numbered by current
// position.
func (s *Session) lectures(moduleID string) []models.Lecture {
	out := make([]models.Lecture, len(s.drafts))
	for i, d := range s.drafts {
		l := models.Lecture{
			ID:       ChildID(moduleID, i+1),
			ModuleID: moduleID,
			Title:    strings.TrimSpace(d.Title),
			Type:     d.Type,
			Duration: d.Duration,
			Link:     d.Link,
			Slides:   d.Slides,
		}
		if d.Type == models.LectureQuiz {
			l.QAData = append([]models.QuizQuestion{}, d.QAData...)
			min := *d.MinScoreToPass
			l.MinScoreToPass = &min
		}
		out[i] = l
	}
	return out
}

// toDuration coerces input to a non-negative integer; anything non-numeric
// becomes 0.
func toDuration(v interface{}) int {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}
