package lifecycle

import (
	"encoding/json"

	"github.com/freema/coauthor/internal/github"
	"github.com/freema/coauthor/internal/roster"
)

// EntryView is the render-ready state of one roster entry. Exactly one of
// Trailer, Error, or Violations is populated once the lookup settles.
type EntryView struct {
	Username   string             `json:"username"`
	Name       string             `json:"name"`
	Status     roster.EntryStatus `json:"status"`
	Trailer    string             `json:"trailer,omitempty"`
	Error      string             `json:"error,omitempty"`
	StatusCode int                `json:"status_code,omitempty"`
	Violations []github.Violation `json:"violations,omitempty"`
	Raw        json.RawMessage    `json:"raw,omitempty"`
}

// Snapshot returns views for every entry in roster order.
func (c *Controller) Snapshot() []EntryView {
	c.mu.Lock()
	defer c.mu.Unlock()

	views := make([]EntryView, 0, len(c.list))
	for _, e := range c.list {
		st, ok := c.states[e.Username]
		if !ok {
			continue
		}
		v := EntryView{
			Username: e.Username,
			Name:     st.entry.Name,
			Status:   st.status,
		}
		switch st.status {
		case roster.StatusResolved:
			v.Trailer = st.trailer
		case roster.StatusTransportError:
			v.Error = st.transport.Message
			v.StatusCode = st.transport.StatusCode
		case roster.StatusValidationError:
			v.Violations = st.validation.Violations
			v.Raw = st.validation.Raw
		}
		views = append(views, v)
	}
	return views
}
