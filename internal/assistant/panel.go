package assistant

import "errors"

// Turn is one question and, once settled, its answer or error.
type Turn struct {
	Question string
	Answer   string
	Err      error
}

// Pending reports whether the turn is still waiting on the model.
func (t Turn) Pending() bool { return t.Answer == "" && t.Err == nil }

// Panel keeps the transcript of one assistant session. Only one question is
// outstanding at a time. It is not safe for concurrent use; the renderer owns it.
type Panel struct {
	asst  Assistant
	turns []Turn
	open  bool
}

func NewPanel(a Assistant) *Panel { return &Panel{asst: a} }

func (p *Panel) Assistant() Assistant { return p.asst }

// Open reports whether the panel is shown.
func (p *Panel) Open() bool { return p.open }

// Toggle shows or hides the panel. A disabled assistant never opens.
func (p *Panel) Toggle() bool {
	if !p.asst.Enabled() {
		p.open = false
		return false
	}
	p.open = !p.open
	return p.open
}

// Busy reports whether the last question is still unanswered.
func (p *Panel) Busy() bool {
	return len(p.turns) > 0 && p.turns[len(p.turns)-1].Pending()
}

// Submit records question as pending. It refuses empty questions, a disabled
// assistant, or a question while another is outstanding.
func (p *Panel) Submit(question string) bool {
	if question == "" || !p.asst.Enabled() || p.Busy() {
		return false
	}
	p.turns = append(p.turns, Turn{Question: question})
	return true
}

// Resolve settles the outstanding question.
func (p *Panel) Resolve(answer string, err error) {
	if !p.Busy() {
		return
	}
	if err == nil && answer == "" {
		err = errors.New("no answer")
	}
	last := &p.turns[len(p.turns)-1]
	last.Answer, last.Err = answer, err
}

// Transcript returns the turns in order.
func (p *Panel) Transcript() []Turn {
	out := make([]Turn, len(p.turns))
	copy(out, p.turns)
	return out
}
