package choropleth

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
)

// TooltipState is the visibility of the shared tooltip.
type TooltipState int

// Tooltip states.
const (
	Hidden TooltipState = iota
	Shown
)

func (s TooltipState) String() string {
	if s == Shown {
		return "shown"
	}
	return "hidden"
}

// MarshalText encodes the state as its name.
func (s TooltipState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses "shown" or "hidden".
func (s *TooltipState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "shown":
		*s = Shown
	case "hidden":
		*s = Hidden
	default:
		return eris.Errorf("choropleth: unknown tooltip state %q", b)
	}
	return nil
}

// TransitionKind classifies a tooltip state change.
type TransitionKind string

// Transition kinds. Update moves a visible tooltip without hiding it.
const (
	TransitionNone   TransitionKind = "none"
	TransitionShow   TransitionKind = "show"
	TransitionUpdate TransitionKind = "update"
	TransitionHide   TransitionKind = "hide"
)

// TooltipContent is the text shown for a hovered region.
type TooltipContent struct {
	Name      string  `json:"name"`
	Subregion string  `json:"subregion"`
	Value     float64 `json:"value"`
	Text      string  `json:"text"`
}

// Tooltip is the tooltip state: Hidden, or Shown at (X, Y) for Key.
type Tooltip struct {
	State   TooltipState    `json:"state"`
	Key     int             `json:"fips,omitempty"`
	X       float64         `json:"x,omitempty"`
	Y       float64         `json:"y,omitempty"`
	Content *TooltipContent `json:"content,omitempty"`
}

// Transition is the result of a hover event.
type Transition struct {
	From    TooltipState   `json:"from"`
	To      TooltipState   `json:"to"`
	Kind    TransitionKind `json:"kind"`
	Tooltip Tooltip        `json:"tooltip"`
	// NoData is set when the hovered region has no statistic.
	NoData bool `json:"no_data,omitempty"`
}

// Content builds the tooltip content for key.
func (r *Renderer) Content(key int) (TooltipContent, bool) {
	s, ok := r.index.Lookup(key)
	if !ok {
		return TooltipContent{}, false
	}
	return TooltipContent{
		Name:      s.Name,
		Subregion: s.Subregion,
		Value:     s.Value,
		Text:      fmt.Sprintf("%s, %s: %s%%", s.Name, s.Subregion, strconv.FormatFloat(s.Value, 'f', -1, 64)),
	}, true
}

// Hover moves the tooltip to key at pointer (x, y). Hovering a region without data hides
// the tooltip.
func (r *Renderer) Hover(cur Tooltip, key int, x, y float64) Transition {
	content, ok := r.Content(key)
	if !ok {
		t := r.Unhover(cur)
		t.NoData = true
		return t
	}

	next := Tooltip{State: Shown, Key: key, X: x, Y: y, Content: &content}
	kind := TransitionShow
	if cur.State == Shown {
		kind = TransitionUpdate
	}
	return Transition{From: cur.State, To: Shown, Kind: kind, Tooltip: next}
}

// Unhover hides the tooltip.
func (r *Renderer) Unhover(cur Tooltip) Transition {
	kind := TransitionNone
	if cur.State == Shown {
		kind = TransitionHide
	}
	return Transition{From: cur.State, To: Hidden, Kind: kind, Tooltip: Tooltip{State: Hidden}}
}
