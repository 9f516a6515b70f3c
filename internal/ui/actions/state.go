package actions

import "sync"

// State is the ui an action reads from and writes to: one input field, one status display, plus the browser-like effects.
type State interface {
	// Input returns the current value of the input field
	Input() string
	ClearInput()
	// SetStatus overwrites the status display
	SetStatus(msg string)
	// Alert tells the user about a problem without touching the status display
	Alert(msg string)
	// Open navigates to url in a new window
	Open(url string) error
}

// Page is an in-memory State. The web handlers create one per request and render what the action did to it.
type Page struct {
	mu        sync.Mutex
	input     string
	status    string
	statusSet bool
	cleared   bool
	alerts    []string
	opened    []string
}

// PageSnapshot is a copy of the effects recorded on a Page
type PageSnapshot struct {
	Input     string
	Status    string
	StatusSet bool
	Cleared   bool
	Alerts    []string
	Opened    []string
}

func NewPage(input string) *Page {
	return &Page{input: input}
}

func (p *Page) Input() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input
}

func (p *Page) SetInput(input string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = input
	p.cleared = false
}

func (p *Page) ClearInput() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = ""
	p.cleared = true
}

func (p *Page) SetStatus(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = msg
	p.statusSet = true
}

func (p *Page) Alert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, msg)
}

// Open records url, the browser does the navigation
func (p *Page) Open(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened = append(p.opened, url)
	return nil
}

func (p *Page) Snapshot() PageSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PageSnapshot{
		Input:     p.input,
		Status:    p.status,
		StatusSet: p.statusSet,
		Cleared:   p.cleared,
		Alerts:    append([]string(nil), p.alerts...),
		Opened:    append([]string(nil), p.opened...),
	}
}
