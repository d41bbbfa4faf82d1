package intake

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/talentscout/internal/generation"
)

type Stage string

const (
	StageIntro     Stage = "intro"
	StageTechStack Stage = "tech_stack"
	StageQuestions Stage = "questions"
	StageConclude  Stage = "conclude"
)

// Keys of the candidate info map.
const (
	FieldName               = "name"
	FieldEmail              = "email"
	FieldPhone              = "phone"
	FieldExperience         = "experience"
	FieldPosition           = "position"
	FieldLocation           = "location"
	FieldTechStack          = "tech_stack"
	FieldGeneratedQuestions = "generated_questions"
)

// CandidateInfo accumulates the applicant fields collected so far.
type CandidateInfo map[string]string

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is the last user-visible message produced by a transition.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
}

// Session is the record owned by one conversation.
type Session struct {
	ID        string              `json:"session_id"`
	Stage     Stage               `json:"stage"`
	Info      CandidateInfo       `json:"candidate_info"`
	Settings  generation.Settings `json:"settings"`
	Notice    *Notice             `json:"notice,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewSession(settings generation.Settings) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Stage:     StageIntro,
		Info:      CandidateInfo{},
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy safe to hand outside the owning lock.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Info = maps.Clone(s.Info)
	if c.Info == nil {
		c.Info = CandidateInfo{}
	}
	if s.Notice != nil {
		n := *s.Notice
		c.Notice = &n
	}
	return &c
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
