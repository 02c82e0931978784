package guard

import (
	"github.com/MrEthical07/techhatch/session"
)

// Outcome is the verdict of a guard decision.
type Outcome uint8

const (
	Allow Outcome = iota
	Redirect
	// Wait means the session restore has not completed; render nothing yet.
	Wait
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Wait:
		return "wait"
	case NotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Reason explains a Redirect.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonLoginRequired Reason = "login_required"
	ReasonAlreadyLogged Reason = "already_logged_in"
	ReasonRoleMismatch  Reason = "role_mismatch"
)

// Decision is the result of Decide.
type Decision struct {
	Outcome  Outcome
	Location string
	Reason   Reason
	Route    Route
	Params   map[string]string
}

// Decide applies route's access rules to sess. A nil sess means no session.
//
// Protected routes without a session redirect to the login page. Public-only routes
// with a session redirect to the session's dashboard, and so do protected routes the
// session's role may not enter. While loading is true nothing but open routes is
// decided.
func Decide(route Route, sess *session.Session, loading bool) Decision {
	d := Decision{Route: route}

	if route.Access == AccessOpen {
		d.Outcome = Allow
		return d
	}
	if loading {
		d.Outcome = Wait
		return d
	}

	switch route.Access {
	case AccessPublicOnly:
		if sess == nil {
			d.Outcome = Allow
			return d
		}
		return redirect(d, Dashboard(sess.Role), ReasonAlreadyLogged)
	case AccessProtected:
		if sess == nil {
			return redirect(d, PathLogin, ReasonLoginRequired)
		}
		if len(route.Roles) > 0 && !sess.HasRole(route.Roles...) {
			return redirect(d, Dashboard(sess.Role), ReasonRoleMismatch)
		}
		d.Outcome = Allow
		return d
	default:
		d.Outcome = NotFound
		return d
	}
}

func redirect(d Decision, location string, reason Reason) Decision {
	d.Outcome = Redirect
	d.Location = location
	d.Reason = reason
	return d
}

// Resolve matches path and decides it. Unknown paths are NotFound.
func (t *Table) Resolve(path string, sess *session.Session, loading bool) Decision {
	route, params, ok := t.Match(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}
	d := Decide(route, sess, loading)
	d.Params = params
	return d
}
