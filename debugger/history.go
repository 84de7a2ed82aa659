package debugger

import (
	"sync"
)

// CommandHistory records the commands typed into an interactive debugging
// session, for the `history` command.
type CommandHistory struct {
	mu       sync.RWMutex
	commands []string
	maxSize  int
}

// NewCommandHistory creates an empty command history.
func NewCommandHistory() *CommandHistory {
	return &CommandHistory{
		commands: make([]string, 0, 100),
		maxSize:  1000, // Keep last 1000 commands
	}
}

// Add records cmd, unless it is empty or repeats the immediately preceding
// command (so holding Enter to repeat "step" doesn't flood the history).
func (h *CommandHistory) Add(cmd string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cmd == "" {
		return
	}

	if len(h.commands) > 0 && h.commands[len(h.commands)-1] == cmd {
		return
	}

	h.commands = append(h.commands, cmd)

	if len(h.commands) > h.maxSize {
		h.commands = h.commands[len(h.commands)-h.maxSize:]
	}
}

// GetAll returns every recorded command, oldest first.
func (h *CommandHistory) GetAll() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]string, len(h.commands))
	copy(result, h.commands)
	return result
}

// Clear empties the history.
func (h *CommandHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.commands = h.commands[:0]
}

// Size returns the number of commands currently recorded.
func (h *CommandHistory) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.commands)
}
