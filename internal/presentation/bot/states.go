package bot

import "sync"

// state tracks where a chat is in a multi-step conversation, the same role
// aiogram's FSMContext plays in the older Python bot.
type state int

const (
	stateIdle state = iota
	stateChooseDaysOff
	stateRemoveDaysOff
	stateSetWorkHours
	stateSetWorkHoursByDate
	stateDeleteWorkHoursByDate
)

type fsm struct {
	mu     sync.Mutex
	states map[int64]state
}

func newFSM() *fsm {
	return &fsm{states: map[int64]state{}}
}

func (f *fsm) get(chatID int64) state {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[chatID]
}

func (f *fsm) set(chatID int64, s state) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[chatID] = s
}

func (f *fsm) clear(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.states, chatID)
}
