// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_presenter

import "sync"

// Element IDs written by the recorder and the controller.
const (
	RecordingTimer  = "recordingTimer"
	AudioLevelBar   = "audioLevelBar"
	RecordingStatus = "recordingStatus"
	RecordButton    = "recordBtn"
	StopButton      = "stopBtn"
)

const (
	StatusReady      = "ready"
	StatusRecording  = "recording"
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusError      = "error"
)

var statusColors = map[string]string{
	StatusReady:      "#666",
	StatusRecording:  "#ff4444",
	StatusProcessing: "#ff9800",
	StatusSuccess:    "#4CAF50",
	StatusError:      "#f44336",
}

// Presenter receives write-only element updates.
type Presenter interface {
	SetText(id, text string)
	SetStyle(id, property, value string)
	Alert(message string)
}

// StatusColor maps a status to its display color, #666 when unknown.
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return "#666"
}

// UpdateUI writes message and the status color to the status element.
func UpdateUI(p Presenter, status, message string) {
	p.SetText(RecordingStatus, message)
	p.SetStyle(RecordingStatus, "color", StatusColor(status))
}

// Multi fans every write out to all presenters in order.
type Multi []Presenter

func (m Multi) SetText(id, text string) {
	for _, p := range m {
		p.SetText(id, text)
	}
}

func (m Multi) SetStyle(id, property, value string) {
	for _, p := range m {
		p.SetStyle(id, property, value)
	}
}

func (m Multi) Alert(message string) {
	for _, p := range m {
		p.Alert(message)
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) SetText(string, string) {}
func (Nop) SetStyle(string, string, string) {}
func (Nop) Alert(string) {}

// Write is one recorded element update.
type Write struct {
	Kind     string
	ID       string
	Property string
	Value    string
}

// Recording keeps every write for inspection.
type Recording struct {
	mu     sync.Mutex
	writes []Write
	text   map[string]string
	style  map[string]string
	alerts []string
}

func NewRecording() *Recording {
	return &Recording{text: map[string]string{}, style: map[string]string{}}
}

func (r *Recording) SetText(id, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, Write{Kind: "text", ID: id, Value: text})
	r.text[id] = text
}

func (r *Recording) SetStyle(id, property, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, Write{Kind: "style", ID: id, Property: property, Value: value})
	r.style[id+"."+property] = value
}

func (r *Recording) Alert(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, Write{Kind: "alert", Value: message})
	r.alerts = append(r.alerts, message)
}

// Text is the last text written to id.
func (r *Recording) Text(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text[id]
}

// Style is the last value written to id's property.
func (r *Recording) Style(id, property string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style[id+"."+property]
}

func (r *Recording) Alerts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.alerts...)
}

func (r *Recording) Writes() []Write {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Write(nil), r.writes...)
}

// WritesTo returns the writes addressed to id.
func (r *Recording) WritesTo(id string) []Write {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Write
	for _, w := range r.writes {
		if w.ID == id {
			out = append(out, w)
		}
	}
	return out
}
