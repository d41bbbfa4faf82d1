package intake

import (
	"fmt"

	"github.com/ent0n29/talentscout/internal/generation"
)

const Title = "💼 TalentScout Hiring Assistant"

type FieldSpec struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Required    bool   `json:"required"`
	Multiline   bool   `json:"multiline,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Value       string `json:"value,omitempty"`
}

// View is the transport-neutral description of one screen.
type View struct {
	SessionID string              `json:"session_id"`
	Stage     Stage               `json:"stage"`
	Title     string              `json:"title"`
	Messages  []string            `json:"messages"`
	Fields    []FieldSpec         `json:"fields,omitempty"`
	Actions   []Action            `json:"actions"`
	Questions string              `json:"questions,omitempty"`
	Notice    *Notice             `json:"notice,omitempty"`
	Settings  generation.Settings `json:"settings"`
}

var introFields = []FieldSpec{
	{Name: FieldName, Label: "Full Name", Required: true},
	{Name: FieldEmail, Label: "Email Address", Required: true},
	{Name: FieldPhone, Label: "Phone Number", Required: true},
	{Name: FieldExperience, Label: "Years of Experience", Required: true},
	{Name: FieldPosition, Label: "Desired Position", Required: true},
	{Name: FieldLocation, Label: "Current Location"},
}

func (c *Controller) view(s *Session) View {
	v := View{
		SessionID: s.ID,
		Stage:     s.Stage,
		Title:     Title,
		Settings:  s.Settings,
	}
	if s.Notice != nil {
		n := *s.Notice
		v.Notice = &n
	}

	switch s.Stage {
	case StageIntro:
		v.Messages = []string{
			"👋 Hello! I'm TalentScout AI, here to assist with your job application.",
			"Let's get started. Please fill in the following:",
		}
		v.Fields = append([]FieldSpec(nil), introFields...)
		v.Actions = []Action{ActionSubmitIntake}
	case StageTechStack:
		v.Messages = []string{
			fmt.Sprintf("Thanks, %s! Now tell me about your technical skills.", s.Info[FieldName]),
		}
		v.Fields = []FieldSpec{{
			Name:        FieldTechStack,
			Label:       "List your tech stack (e.g., Python, Django, MySQL, Docker)",
			Required:    true,
			Multiline:   true,
			Placeholder: "Python, Django, MySQL, Docker",
			Value:       s.Info[FieldTechStack],
		}}
		v.Actions = []Action{ActionSubmitTechStack}
	case StageQuestions:
		v.Messages = []string{"Here are your technical questions:"}
		v.Questions = s.Info[FieldGeneratedQuestions]
		if !c.opts.AutoConclude {
			v.Actions = []Action{ActionAcknowledge}
		}
	case StageConclude:
		v.Messages = []string{
			"✅ Thank you for completing the initial screening!",
			"Our team will review your answers and contact you at the provided email/phone.",
			"Good luck with your application! 🚀",
		}
	}
	v.Actions = append(v.Actions, ActionReset, ActionUpdateSettings)
	return v
}
