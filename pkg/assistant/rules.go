// Package assistant answers site chat messages with an ordered set of
// string-matching rules.
package assistant

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DashboardPath = "/dashboard"
	HomePath      = "/"
	InterviewPath = "/dashboard/interview/"

	// serverTimeLayout renders the clock like an en-US locale string.
	serverTimeLayout = "1/2/2006, 3:04:05 PM"
)

const (
	replyEmpty     = "Please say something — I'm listening!"
	replyGreeting  = "Hello! I can help you navigate AceMock or answer basic questions. Try 'Go to dashboard' or ask what this app does."
	replyIdentity  = "I'm the AceMock assistant — I can explain the app and help you reach pages."
	replyAppInfo   = "AceMock is an AI-driven mock interview and feedback system: generate questions, record answers, and get AI feedback."
	replyUnknown   = "Sorry, I don't know that yet. Try asking about the Dashboard or say 'Go to dashboard'."
	replyDashboard = "Opening the dashboard."
	replyHome      = "Taking you to the homepage."
	replyStart     = "To start an interview, open the interview details then click Start. Showing interviews."
	replySuggest   = "I can open the Dashboard for you. Would you like me to go there?"
)

var (
	greetings     = []string{"hi", "hello", "hey"}
	identityTerms = []string{"your name", "who are you", "what are you"}
	appInfoTerms  = []string{"what is this app", "what does this app", "what is acemock", "what is ace mock"}

	additionPattern  = regexp.MustCompile(`\d+\s*\+\s*\d+`)
	numberPattern    = regexp.MustCompile(`-?\d+\.?\d*`)
	navigatePattern  = regexp.MustCompile(`\b(go to|open|take me to|navigate to|show me|goto)\b\s*(.*)`)
	interviewPattern = regexp.MustCompile(`interview\s+([A-Za-z0-9\-_.]+)`)
)

// rule pairs a predicate with its handler. A handler may decline by
// returning false, in which case evaluation continues with the next rule.
type rule struct {
	name   string
	match  func(msg string) bool
	handle func(r *Responder, msg string) (Reply, bool)
}

// rules are evaluated in order; the first rule whose handler accepts wins.
var rules = []rule{
	{name: "greeting", match: isGreeting, handle: fixed(replyGreeting)},
	{name: "identity", match: containsAny(identityTerms...), handle: fixed(replyIdentity)},
	{name: "time", match: containsAny("time"), handle: serverTime},
	{name: "arithmetic", match: isArithmetic, handle: sum},
	{name: "navigation", match: navigatePattern.MatchString, handle: navigate},
	{name: "app_info", match: containsAny(appInfoTerms...), handle: fixed(replyAppInfo)},
}

// Responder holds the clock used by the time rule.
type Responder struct {
	Now func() time.Time
}

// Respond answers message with the default responder.
func Respond(message string) Reply {
	return (&Responder{}).Respond(message)
}

// Respond classifies message and returns exactly one reply with at most one
// navigate action. It never fails.
func (r *Responder) Respond(message string) Reply {
	reply, _ := r.Classify(message)
	return reply
}

// Classify is Respond that also reports the name of the rule that answered.
func (r *Responder) Classify(message string) (Reply, string) {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return Reply{Reply: replyEmpty}, "empty"
	}

	for _, rl := range rules {
		if !rl.match(msg) {
			continue
		}
		if reply, ok := rl.handle(r, msg); ok {
			return reply, rl.name
		}
	}
	return Reply{Reply: replyUnknown}, "fallback"
}

func (r *Responder) now() time.Time {
	if r == nil || r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func isGreeting(msg string) bool {
	for _, g := range greetings {
		if msg == g || strings.HasPrefix(msg, g+" ") || strings.Contains(msg, " "+g+" ") {
			return true
		}
	}
	return false
}

func containsAny(terms ...string) func(string) bool {
	return func(msg string) bool {
		for _, term := range terms {
			if strings.Contains(msg, term) {
				return true
			}
		}
		return false
	}
}

func isArithmetic(msg string) bool {
	return strings.HasPrefix(msg, "add ") ||
		strings.Contains(msg, "sum") ||
		strings.Contains(msg, "plus") ||
		additionPattern.MatchString(msg)
}

func fixed(text string) func(*Responder, string) (Reply, bool) {
	return func(*Responder, string) (Reply, bool) {
		return Reply{Reply: text}, true
	}
}

func serverTime(r *Responder, _ string) (Reply, bool) {
	return Reply{Reply: "Server time: " + r.now().Format(serverTimeLayout)}, true
}

// sum adds every numeric token in the message. Without numbers it declines.
// Tokens beyond float64 range count as ±Inf.
func sum(_ *Responder, msg string) (Reply, bool) {
	tokens := numberPattern.FindAllString(msg, -1)
	if len(tokens) == 0 {
		return Reply{}, false
	}

	var total float64
	for _, tok := range tokens {
		n, err := strconv.ParseFloat(strings.TrimSuffix(tok, "."), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			continue
		}
		total += n
	}
	return Reply{Reply: "The sum is " + formatNumber(total) + "."}, true
}

// formatNumber prints whole values without decimals and others with two.
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case math.Trunc(n) == n:
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	return strconv.FormatFloat(n, 'f', 2, 64)
}

func navigate(_ *Responder, msg string) (Reply, bool) {
	m := navigatePattern.FindStringSubmatch(msg)
	target := ""
	if len(m) > 2 {
		target = strings.TrimSpace(m[2])
	}

	switch {
	case strings.Contains(target, "dashboard") || strings.Contains(msg, "dashboard"):
		return Navigate(replyDashboard, DashboardPath), true
	case strings.Contains(target, "home") || strings.Contains(target, "main"):
		return Navigate(replyHome, HomePath), true
	}

	if id := interviewPattern.FindStringSubmatch(msg); id != nil {
		return Navigate("Opening interview "+id[1]+".", InterviewPath+id[1]), true
	}

	if strings.Contains(target, "start interview") || strings.Contains(msg, "start interview") {
		return Navigate(replyStart, DashboardPath), true
	}

	return Navigate(replySuggest, DashboardPath), true
}
