package tracker

import (
	"context"

	"github.com/teranos/jobtrack/api"
	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/joblist"
	"github.com/teranos/jobtrack/logger"
	"github.com/teranos/jobtrack/session"
)

// FlowError carries the fixed message a flow shows the user alongside the
// underlying cause.
type FlowError struct {
	Message string
	Err     error
}

func (e *FlowError) Error() string { return e.Message }

func (e *FlowError) Unwrap() error { return e.Err }

// UserMessage is the text to show for err: a FlowError's message, or
// err.Error() otherwise.
func UserMessage(err error) string {
	var flow *FlowError
	if errors.As(err, &flow) {
		return flow.Message
	}
	return err.Error()
}

// Register creates an account. Every failure is reported to the user as
// MsgRegistrationFailed; the cause is logged.
func (t *Tracker) Register(ctx context.Context, name, email, password string) (string, error) {
	resp, err := t.api.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		t.logger.Warnw("Registration failed", logger.FieldError, err)
		return "", &FlowError{Message: MsgRegistrationFailed, Err: err}
	}
	t.logger.Infow("Registered", logger.FieldUserName, name)
	return resp.Message, nil
}

// Login exchanges credentials for a token and persists the session. Every
// failure is reported as MsgLoginFailed.
func (t *Tracker) Login(ctx context.Context, email, password string) (session.Session, error) {
	resp, err := t.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		t.logger.Warnw("Login failed", logger.FieldError, err)
		return session.Session{}, &FlowError{Message: MsgLoginFailed, Err: err}
	}

	sess := resp.Session()
	if err := t.sessions.Save(ctx, sess); err != nil {
		t.logger.Errorw("Failed to store session", logger.FieldError, err)
		return session.Session{}, &FlowError{Message: MsgLoginFailed, Err: err}
	}

	t.logger.Infow("Logged in", logger.FieldUserName, sess.UserName)
	return sess, nil
}

// Logout invalidates the token on the server and then forgets the session
// and the list. If the server call fails the session is kept.
func (t *Tracker) Logout(ctx context.Context) error {
	sess, err := t.sessions.Require(ctx)
	if err != nil {
		return err
	}

	if err := t.api.Logout(ctx, sess); err != nil {
		t.logger.Errorw("Logout failed", logger.FieldError, err)
		return errors.Wrap(err, "logout")
	}

	if err := t.sessions.Clear(ctx); err != nil {
		return errors.Wrap(err, "clear session")
	}

	t.mu.Lock()
	t.state = joblist.NewState()
	t.form = Form{}
	t.createErr = ""
	t.mu.Unlock()

	t.logger.Infow("Logged out", logger.FieldUserName, sess.UserName)
	return nil
}
