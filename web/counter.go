package web

import (
	"net/http"

	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/session"
)

const counterKey = "counter"

// A counterState is the counter demo as clients see it.
type counterState struct {
	Counter int `json:"counter"`
}

// counter answers with the visitor's count.
func (h *Handler) counter(w http.ResponseWriter, r *http.Request) {
	s, err := h.Session(r.Context())
	if err != nil {
		h.Err(w, r, err)
		return
	}

	h.Json(w, r, resp.Data(counterState{Counter: count(s)}))
}

// increaseCounter adds one to the visitor's count.
func (h *Handler) increaseCounter(w http.ResponseWriter, r *http.Request) {
	h.setCounter(w, r, func(n int) int { return n + 1 })
}

// resetCounter sets the visitor's count back to zero.
func (h *Handler) resetCounter(w http.ResponseWriter, r *http.Request) {
	h.setCounter(w, r, func(int) int { return 0 })
}

func (h *Handler) setCounter(w http.ResponseWriter, r *http.Request, next func(int) int) {
	s, err := h.Session(r.Context())
	if err != nil {
		h.Err(w, r, err)
		return
	}

	n := next(count(s))
	if err := s.Set(w, r, counterKey, n); err != nil {
		h.Err(w, r, err)
		return
	}

	h.Json(w, r, resp.Data(counterState{Counter: n}))
}

// count reads the count kept in s, which starts at zero.
func count(s session.Session) int {
	n, _ := s.Get(counterKey).(int)
	return n
}
