package editor

import (
	"courseplatform/backend/models"
)

// DraftInput is a lecture row as submitted by the authoring form.
type DraftInput struct {
	Title          string                `json:"title"`
	Type           models.LectureType    `json:"type"`
	Duration       interface{}           `json:"duration"`
	Link           string                `json:"link"`
	Slides         string                `json:"slides"`
	QAData         []models.QuizQuestion `json:"qa_data"`
	MinScoreToPass *int                  `json:"min_score_to_pass"`
}

// ApplyForm replaces the title and drafts with a submitted form, running
// every row through the same guards as interactive editing. Stored ids of
// the current drafts are dropped; the save regenerates them anyway.
func (s *Session) ApplyForm(title string, rows []DraftInput) error {
	if err := s.SetTitle(title); err != nil {
		return err
	}
	s.drafts = nil
	for i, row := range rows {
		var key LocalID
		if i == 0 {
			d := emptyDraft()
			s.drafts = []*Draft{d}
			key = d.Key
		} else {
			k, err := s.AddLecture()
			if err != nil {
				return err
			}
			key = k
		}
		if err := s.applyRow(key, row); err != nil {
			return err
		}
	}
	if len(s.drafts) == 0 {
		s.drafts = []*Draft{emptyDraft()}
	}
	s.recomputeDuration()
	return nil
}

func (s *Session) applyRow(key LocalID, row DraftInput) error {
	typ := row.Type
	if typ == "" {
		typ = models.LectureVideo
	}
	if err := s.UpdateLecture(key, FieldType, string(typ)); err != nil {
		return err
	}
	if err := s.UpdateLecture(key, FieldTitle, row.Title); err != nil {
		return err
	}
	if err := s.UpdateLecture(key, FieldDuration, row.Duration); err != nil {
		return err
	}
	if typ != models.LectureQuiz {
		if err := s.UpdateLecture(key, FieldLink, row.Link); err != nil {
			return err
		}
		return s.UpdateLecture(key, FieldSlides, row.Slides)
	}
	for _, q := range row.QAData {
		if err := s.AddQuestion(key, q); err != nil {
			return err
		}
	}
	if row.MinScoreToPass != nil {
		return s.UpdateLecture(key, FieldMinScoreToPass, *row.MinScoreToPass)
	}
	return nil
}
