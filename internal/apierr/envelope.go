package apierr

import "time"

// Envelope is the JSON body written for every failed API request.
type Envelope struct {
	Error      string `json:"error"`
	Code       Code   `json:"code,omitempty"`
	Timestamp  string `json:"timestamp"`
	RetryAfter int    `json:"retryAfter,omitempty"`
	Details    any    `json:"details,omitempty"`
}

// NewEnvelope renders e for a client. Outside development only the generic
// per-code message is exposed and details are withheld.
func NewEnvelope(e *Error, development bool, now time.Time) Envelope {
	env := Envelope{
		Code:      e.Code,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
	if e.Kind == KindRateLimit {
		env.RetryAfter = retrySeconds(e.RetryAfter)
	}

	if !development {
		env.Error = e.Code.Message(false)
		return env
	}

	env.Error = e.Code.Message(true)
	if e.Message != "" {
		env.Error = e.Message
	}
	switch {
	case e.Details != nil:
		env.Details = e.Details
	case e.Err != nil:
		env.Details = map[string]string{"cause": e.Err.Error()}
	}
	return env
}

// RetryAfterSeconds returns the Retry-After header value, rounded up to a whole second.
func (e *Error) RetryAfterSeconds() int {
	return retrySeconds(e.RetryAfter)
}

func retrySeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
