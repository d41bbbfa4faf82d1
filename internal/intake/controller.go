package intake

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"go.uber.org/zap"

	"github.com/ent0n29/talentscout/internal/generation"
	"github.com/ent0n29/talentscout/internal/policy"
)

type Action string

const (
	ActionSubmitIntake    Action = "submit_intake"
	ActionSubmitTechStack Action = "submit_tech_stack"
	ActionAcknowledge     Action = "acknowledge"
	ActionReset           Action = "reset"
	ActionRender          Action = "render"
	ActionUpdateSettings  Action = "update_settings"
)

func (a Action) Valid() bool {
	switch a {
	case ActionSubmitIntake, ActionSubmitTechStack, ActionAcknowledge,
		ActionReset, ActionRender, ActionUpdateSettings:
		return true
	default:
		return false
	}
}

// Command is one user event, decoded from any transport.
type Command struct {
	Action    Action
	Intake    *IntakeForm
	TechStack string
	Settings  *generation.SettingsPatch
}

type Options struct {
	// AutoConclude advances QUESTIONS to CONCLUDE as soon as the
	// questions have been rendered once, without an acknowledgement.
	AutoConclude      bool
	GenerationTimeout time.Duration
	Limits            generation.Limits
}

// GenerationResult describes one generation attempt for hooks.
type GenerationResult struct {
	SessionID      string
	Provider       string
	Model          string
	Code           generation.Code // empty on success
	Retryable      bool
	Duration       time.Duration
	TechStackChars int
	Err            error
}

func (r GenerationResult) Outcome() string {
	if r.Code == "" {
		return "ok"
	}
	return string(r.Code)
}

type Hooks struct {
	OnTransition func(sessionID string, from, to Stage)
	OnRejected   func(sessionID string, action Action, reason string)
	OnGeneration func(GenerationResult)
}

// Controller applies the flow rules to a caller-owned session record.
// It keeps no per-session state; callers serialize access to one record.
type Controller struct {
	gen    generation.Generator
	opts   Options
	logger *zap.Logger
	hooks  Hooks
}

func NewController(gen generation.Generator, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Limits.Models) == 0 {
		opts.Limits = generation.DefaultLimits()
	}
	return &Controller{gen: gen, opts: opts, logger: logger}
}

// SetHooks must be called before the controller serves traffic.
func (c *Controller) SetHooks(h Hooks) {
	c.hooks = h
}

func (c *Controller) Ready() bool { return c.gen != nil }

func (c *Controller) Provider() string {
	if c.gen == nil {
		return ""
	}
	return c.gen.Name()
}

func (c *Controller) Limits() generation.Limits { return c.opts.Limits }

func (c *Controller) DefaultSettings() generation.Settings { return c.opts.Limits.Defaults }

// NewSession creates a record in INTRO carrying the default settings.
func (c *Controller) NewSession() *Session {
	return NewSession(c.opts.Limits.Defaults)
}

// SubmitIntake leaves INTRO once every required contact field is set.
func (c *Controller) SubmitIntake(s *Session, form IntakeForm) error {
	if s.Stage != StageIntro {
		return c.rejectStage(s, ActionSubmitIntake)
	}
	if err := checkForm(form, "Please fill in all required fields."); err != nil {
		return c.rejectValidation(s, ActionSubmitIntake, err)
	}

	maps.Copy(s.Info, form.info())
	c.setNotice(s, NoticeSuccess, "", "Thanks! Your details have been saved.")
	c.transition(s, StageTechStack)

	redactedEmail, _ := policy.RedactPII(form.Email)
	c.logger.Info("intake accepted",
		zap.String("session_id", s.ID),
		zap.String("candidate", policy.Mask(form.Name)),
		zap.String("email", redactedEmail),
		zap.String("position", form.Position),
	)
	return nil
}

// SubmitTechStack stores the tech stack and runs the single generation
// call. The stage only advances when the call succeeds.
func (c *Controller) SubmitTechStack(ctx context.Context, s *Session, form TechStackForm) error {
	if s.Stage != StageTechStack {
		return c.rejectStage(s, ActionSubmitTechStack)
	}
	if err := checkForm(form, "Please enter your tech stack."); err != nil {
		return c.rejectValidation(s, ActionSubmitTechStack, err)
	}

	s.Info[FieldTechStack] = form.TechStack
	s.touch()

	if c.gen == nil {
		c.setNotice(s, NoticeError, "not_configured",
			"Question generation is not configured. Please contact the hiring team.")
		c.rejected(s, ActionSubmitTechStack, "not_configured")
		return ErrNotConfigured
	}

	if c.opts.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.GenerationTimeout)
		defer cancel()
	}

	settings := s.Settings
	start := time.Now()
	questions, err := generation.Questions(ctx, c.gen, form.TechStack, settings)
	result := GenerationResult{
		SessionID:      s.ID,
		Provider:       c.gen.Name(),
		Model:          settings.Model,
		Duration:       time.Since(start),
		TechStackChars: len([]rune(form.TechStack)),
	}

	if err != nil {
		var gerr *generation.Error
		if !errors.As(err, &gerr) {
			gerr = generation.Classify(c.gen.Name(), err)
		}
		result.Code = gerr.Code
		result.Retryable = gerr.Retryable
		result.Err = gerr
		c.generated(result)

		c.setNotice(s, NoticeError, string(gerr.Code), generationMessage(gerr))
		c.rejected(s, ActionSubmitTechStack, string(gerr.Code))
		c.logger.Warn("question generation failed",
			zap.String("session_id", s.ID),
			zap.String("provider", gerr.Provider),
			zap.String("model", settings.Model),
			zap.String("code", string(gerr.Code)),
			zap.Bool("retryable", gerr.Retryable),
			zap.Duration("duration", result.Duration),
			zap.Error(gerr.Err),
		)
		return &GenerationError{Err: gerr}
	}

	c.generated(result)
	s.Info[FieldGeneratedQuestions] = questions
	c.setNotice(s, NoticeSuccess, "", "Here are your technical questions:")
	c.transition(s, StageQuestions)
	c.logger.Info("questions generated",
		zap.String("session_id", s.ID),
		zap.String("provider", result.Provider),
		zap.String("model", settings.Model),
		zap.Duration("duration", result.Duration),
	)
	return nil
}

// Acknowledge leaves QUESTIONS for the closing screen.
func (c *Controller) Acknowledge(s *Session) error {
	if s.Stage != StageQuestions {
		return c.rejectStage(s, ActionAcknowledge)
	}
	s.Notice = nil
	c.transition(s, StageConclude)
	return nil
}

// Reset returns to INTRO with an empty info map from any stage.
// Settings are kept.
func (c *Controller) Reset(s *Session) {
	s.Info = CandidateInfo{}
	c.setNotice(s, NoticeInfo, "", "Chat has been reset.")
	if s.Stage != StageIntro {
		c.transition(s, StageIntro)
	}
	s.touch()
}

// UpdateSettings applies a sidebar change; out of range values are
// rejected as a whole.
func (c *Controller) UpdateSettings(s *Session, patch generation.SettingsPatch) error {
	next := patch.Apply(s.Settings)
	if err := c.opts.Limits.Validate(next); err != nil {
		var serr *generation.SettingsError
		if !errors.As(err, &serr) {
			return err
		}
		return c.rejectValidation(s, ActionUpdateSettings, &ValidationError{
			Fields:  serr.Fields,
			Message: serr.Error(),
		})
	}
	s.Settings = next
	s.touch()
	return nil
}

// Render builds the current screen. With AutoConclude, showing the
// questions once moves the record on to CONCLUDE.
func (c *Controller) Render(s *Session) View {
	v := c.view(s)
	if c.opts.AutoConclude && s.Stage == StageQuestions {
		c.transition(s, StageConclude)
	}
	return v
}

// Apply dispatches a command and renders the resulting screen. The view
// is returned even when the command is rejected.
func (c *Controller) Apply(ctx context.Context, s *Session, cmd Command) (View, error) {
	var err error
	switch cmd.Action {
	case ActionRender:
	case ActionSubmitIntake:
		var form IntakeForm
		if cmd.Intake != nil {
			form = *cmd.Intake
		}
		err = c.SubmitIntake(s, form)
	case ActionSubmitTechStack:
		err = c.SubmitTechStack(ctx, s, TechStackForm{TechStack: cmd.TechStack})
	case ActionAcknowledge:
		err = c.Acknowledge(s)
	case ActionReset:
		c.Reset(s)
	case ActionUpdateSettings:
		var patch generation.SettingsPatch
		if cmd.Settings != nil {
			patch = *cmd.Settings
		}
		err = c.UpdateSettings(s, patch)
	default:
		err = fmt.Errorf("unknown action %q", cmd.Action)
		c.setNotice(s, NoticeWarning, "unknown_action", "That action is not recognized.")
		c.rejected(s, cmd.Action, "unknown_action")
	}
	return c.Render(s), err
}

func (c *Controller) transition(s *Session, to Stage) {
	from := s.Stage
	s.Stage = to
	s.touch()
	if c.hooks.OnTransition != nil {
		c.hooks.OnTransition(s.ID, from, to)
	}
	c.logger.Debug("stage transition",
		zap.String("session_id", s.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
}

func (c *Controller) rejectStage(s *Session, action Action) error {
	err := &StageError{Action: action, Stage: s.Stage}
	c.setNotice(s, NoticeWarning, "invalid_stage", "That step is not available right now.")
	c.rejected(s, action, "invalid_stage")
	return err
}

func (c *Controller) rejectValidation(s *Session, action Action, err error) error {
	msg := err.Error()
	var verr *ValidationError
	if errors.As(err, &verr) {
		msg = verr.Message
	}
	c.setNotice(s, NoticeWarning, "validation_failed", msg)
	c.rejected(s, action, "validation_failed")
	return err
}

func (c *Controller) rejected(s *Session, action Action, reason string) {
	if c.hooks.OnRejected != nil {
		c.hooks.OnRejected(s.ID, action, reason)
	}
}

func (c *Controller) generated(r GenerationResult) {
	if c.hooks.OnGeneration != nil {
		c.hooks.OnGeneration(r)
	}
}

func (c *Controller) setNotice(s *Session, level NoticeLevel, code, msg string) {
	s.Notice = &Notice{Level: level, Code: code, Message: msg}
	s.touch()
}

func generationMessage(err *generation.Error) string {
	switch err.Code {
	case generation.CodeCredentialInvalid:
		return "The question service rejected its credentials. Please contact the hiring team."
	case generation.CodeModelUnknown:
		return "The selected model is not available. Choose another model and try again."
	case generation.CodeRateLimited:
		return "The question service is busy. Please try again in a moment."
	case generation.CodeTimeout:
		return "Generating questions took too long. Please try again."
	case generation.CodeContentBlocked:
		return "The question service declined this request. Try rephrasing your tech stack."
	case generation.CodeProviderUnavailable:
		return "The question service is unavailable. Please try again shortly."
	case generation.CodeEmptyResponse:
		return "No questions were returned. Please try again."
	case generation.CodeCanceled:
		return "Question generation was canceled."
	default:
		return "Could not generate questions. Please try again."
	}
}
